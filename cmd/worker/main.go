// Package main - точка входа фоновых процессов (Worker) реестра.
//
// Worker отвечает за периодические задачи:
// - Пересинхронизация Redis-лидерборда из Postgres (устранение дрейфа
//   после перезапусков Redis или пропущенных событий)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reprofund/research-ledger/config"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/infrastructure/messaging"
	"github.com/reprofund/research-ledger/internal/infrastructure/persistence/postgres"
	"github.com/reprofund/research-ledger/internal/infrastructure/persistence/redis"
	"github.com/reprofund/research-ledger/internal/infrastructure/scheduler"
	"github.com/reprofund/research-ledger/internal/infrastructure/scheduler/jobs"
	"github.com/reprofund/research-ledger/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Observability.LogLevel,
		Format: logger.Format(cfg.Observability.LogFormat),
	})
	slog.SetDefault(log)

	log.Info("starting research ledger worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled, nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")

	var dbConn *postgres.Connection
	if cfg.Database.URL != "" {
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	} else {
		dbConn, err = postgres.NewConnection(ctx, postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	researcherRepo := postgres.NewResearcherRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К REDIS
	// ─────────────────────────────────────────────────────────────────────────
	// Без Redis пересинхронизация лидерборда не имеет смысла, но worker
	// остаётся запущенным: задача становится no-op до появления Redis.
	var leaderboard *redis.LeaderboardCache

	if !cfg.Redis.Disabled {
		redisCache, err := redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, rebuild job will be a no-op", "error", err)
		} else {
			defer redisCache.Close()
			leaderboard = redis.NewLeaderboardCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultConfig()
	busConfig.AsyncMode = cfg.EventBus.AsyncMode
	busConfig.WorkerPoolSize = cfg.EventBus.WorkerPoolSize
	busConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() { _ = eventBus.Close() }()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ПЛАНИРОВЩИК И ЗАДАЧИ
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:        log,
		EnableMetrics: true,
	})

	rebuildJob := jobs.NewRebuildLeaderboardJob(
		researcherRepo,
		leaderboardOrNil(leaderboard),
		eventBus,
		log,
		jobs.RebuildLeaderboardConfig{Timeout: cfg.Scheduler.JobTimeout},
	)

	if err := sched.Register(
		rebuildJob,
		scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval),
	); err != nil {
		return fmt.Errorf("failed to register rebuild job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	log.Info("scheduler started",
		"rebuild_interval", cfg.Scheduler.RebuildLeaderboardInterval.String(),
	)

	// Первый запуск сразу: после рестарта worker не ждём целый интервал.
	if _, err := sched.RunNow(ctx, rebuildJob.Name()); err != nil {
		log.Warn("initial rebuild trigger failed", "error", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	if err := sched.Stop(); err != nil {
		log.Warn("scheduler stop", "error", err)
	}
	log.Info("shutdown complete")
	return nil
}

// leaderboardOrNil keeps a nil *redis.LeaderboardCache from becoming a
// non-nil interface value.
func leaderboardOrNil(lb *redis.LeaderboardCache) researcher.Leaderboard {
	if lb == nil {
		return nil
	}
	return lb
}
