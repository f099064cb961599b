// Package main - точка входа HTTP API реестра исследовательского
// финансирования.
//
// Реестр ведёт постоянный учёт исследователей, предложений, взносов,
// вех с доказательствами воспроизводимости и рецензий со ставками.
// Очки репутации и значки начисляются движком репутации при каждом
// событии вклада.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: Postgres, Redis, event bus
// - Interface: HTTP REST API
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reprofund/research-ledger/config"
	"github.com/reprofund/research-ledger/internal/application/command"
	"github.com/reprofund/research-ledger/internal/application/eventhandler"
	"github.com/reprofund/research-ledger/internal/application/query"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/infrastructure/messaging"
	"github.com/reprofund/research-ledger/internal/infrastructure/persistence/postgres"
	"github.com/reprofund/research-ledger/internal/infrastructure/persistence/redis"
	httpserver "github.com/reprofund/research-ledger/internal/interface/http"
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
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Config{
		Level:  cfg.Observability.LogLevel,
		Format: logger.Format(cfg.Observability.LogFormat),
	})
	slog.SetDefault(log)

	log.Info("starting research ledger API",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
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
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ И ЗАСЕВ КАТАЛОГА ЗНАЧКОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	badgeCatalog := researcher.DefaultBadgeCatalog()
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	if err := badgeRepo.Seed(ctx, badgeCatalog); err != nil {
		return fmt.Errorf("failed to seed badge catalog: %w", err)
	}
	log.Info("migrations completed", "badges", len(badgeCatalog))

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var leaderboard researcher.Leaderboard
	var profileCache researcher.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCache, err = redis.NewCache(redis.Config{
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
			// Деградация: лидерборд читается из Postgres, профили без кеша.
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureLeaderboardRedisCache, nil) {
				leaderboard = redis.NewLeaderboardCache(redisCache)
			}
			if cfg.Features.IsEnabled(config.FeatureResearcherProfileCache, nil) {
				profileCache = redis.NewResearcherCache(redisCache)
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	researcherRepo := postgres.NewResearcherRepository(dbConn)
	proposalRepo := postgres.NewProposalRepository(dbConn)
	milestoneRepo := postgres.NewMilestoneRepository(dbConn)
	proofRepo := postgres.NewProofRepository(dbConn)
	reviewRepo := postgres.NewReviewRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS И ОБРАБОТЧИКОВ СОБЫТИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busConfig := messaging.DefaultConfig()
	busConfig.AsyncMode = cfg.EventBus.AsyncMode
	busConfig.WorkerPoolSize = cfg.EventBus.WorkerPoolSize
	busConfig.EnableMetrics = cfg.EventBus.EnableMetrics
	busConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	leaderboardUpdater := eventhandler.NewLeaderboardUpdater(researcherRepo, leaderboard, profileCache, log)
	badgeAudit := eventhandler.NewBadgeAuditLogger(log)
	if err := eventhandler.RegisterAll(eventBus, leaderboardUpdater, badgeAudit); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	engine := researcher.NewEngine(badgeCatalog)

	registerResearcherCmd := command.NewRegisterResearcherHandler(researcherRepo, eventBus)
	createProposalCmd := command.NewCreateProposalHandler(proposalRepo, researcherRepo, engine, eventBus)
	fundProposalCmd := command.NewFundProposalHandler(proposalRepo, eventBus)
	advanceStageCmd := command.NewAdvanceProposalStageHandler(proposalRepo, eventBus)
	createMilestoneCmd := command.NewCreateMilestoneHandler(milestoneRepo, proposalRepo, eventBus)
	submitProofCmd := command.NewSubmitProofHandler(milestoneRepo, proofRepo, eventBus)
	verifyMilestoneCmd := command.NewVerifyMilestoneHandler(
		milestoneRepo, proofRepo, proposalRepo, eventBus,
		command.VerifyMilestoneConfig{
			RequireVerifiedProof: cfg.Features.IsEnabled(config.FeatureMilestoneRequireProof, nil),
		},
	)
	submitReviewCmd := command.NewSubmitReviewHandler(
		reviewRepo, proposalRepo, researcherRepo, engine, eventBus,
		command.SubmitReviewConfig{
			AwardPoints: cfg.Features.IsEnabled(config.FeatureReviewAwardPoints, nil),
		},
	)

	getResearcherQuery := query.NewGetResearcherHandler(researcherRepo, profileCache)
	listResearchersQuery := query.NewGetAllResearchersHandler(researcherRepo)
	getProposalQuery := query.NewGetProposalHandler(proposalRepo)
	listProposalsQuery := query.NewGetAllProposalsHandler(proposalRepo)
	researcherWorkQuery := query.NewGetProposalsByResearcherHandler(proposalRepo)
	getMilestoneQuery := query.NewGetMilestoneHandler(milestoneRepo, proofRepo)
	leaderboardQuery := query.NewGetLeaderboardHandler(leaderboard, researcherRepo)
	profileQuery := query.NewGetResearcherProfileHandler(researcherRepo, proposalRepo, leaderboard)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. СОЗДАНИЕ И ЗАПУСК HTTP СЕРВЕРА
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	serverConfig := httpserver.DefaultConfig()
	serverConfig.Host = cfg.HTTP.Host
	serverConfig.Port = cfg.HTTP.Port
	serverConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	serverConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	serverConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes

	healthChecker := &httpserver.HealthChecker{Postgres: dbConn}
	if redisCache != nil {
		healthChecker.Redis = redisCache
	}

	server := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		RegisterResearcher: registerResearcherCmd,
		CreateProposal:     createProposalCmd,
		FundProposal:       fundProposalCmd,
		AdvanceStage:       advanceStageCmd,
		CreateMilestone:    createMilestoneCmd,
		SubmitProof:        submitProofCmd,
		VerifyMilestone:    verifyMilestoneCmd,
		SubmitReview:       submitReviewCmd,

		GetResearcher:   getResearcherQuery,
		ListResearchers: listResearchersQuery,
		GetProposal:     getProposalQuery,
		ListProposals:   listProposalsQuery,
		ResearcherWork:  researcherWorkQuery,
		GetMilestone:    getMilestoneQuery,
		GetLeaderboard:  leaderboardQuery,
		GetProfile:      profileQuery,

		AuthRepo:      researcherRepo,
		Logger:        log,
		HealthChecker: healthChecker,
	})

	serverErr := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
