// Package jobs contains implementations of scheduled jobs for the research
// ledger.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
	"github.com/reprofund/research-ledger/pkg/circuitbreaker"
	"github.com/reprofund/research-ledger/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildLeaderboardJob resyncs the Redis leaderboard from Postgres.
// The event-driven updates keep the sorted set current in normal operation;
// this job repairs drift after Redis restarts or missed events.
type RebuildLeaderboardJob struct {
	researcherRepo researcher.Repository
	leaderboard    researcher.Leaderboard
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker

	config RebuildLeaderboardConfig

	lastRebuildStats atomic.Value // *RebuildStats
}

// RebuildLeaderboardConfig contains configuration for the rebuild job.
type RebuildLeaderboardConfig struct {
	// Timeout is the maximum duration for the rebuild operation.
	Timeout time.Duration
}

// DefaultRebuildLeaderboardConfig returns sensible defaults.
func DefaultRebuildLeaderboardConfig() RebuildLeaderboardConfig {
	return RebuildLeaderboardConfig{
		Timeout: 5 * time.Minute,
	}
}

// RebuildStats contains statistics from a rebuild run.
type RebuildStats struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	TotalResearchers int
	Success          bool
	Error            error
}

// NewRebuildLeaderboardJob creates a new rebuild leaderboard job.
func NewRebuildLeaderboardJob(
	researcherRepo researcher.Repository,
	leaderboard researcher.Leaderboard,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config RebuildLeaderboardConfig,
) *RebuildLeaderboardJob {
	if logger == nil {
		logger = slog.Default()
	}

	j := &RebuildLeaderboardJob{
		researcherRepo: researcherRepo,
		leaderboard:    leaderboard,
		eventPublisher: eventPublisher,
		logger:         logger,
		retrier:        retry.RedisRetrier(),
		config:         config,
	}

	j.breaker = circuitbreaker.RedisBreaker(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})

	return j
}

// Name returns the job name.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description returns a human-readable description.
func (j *RebuildLeaderboardJob) Description() string {
	return "Resyncs the Redis leaderboard sorted set from the durable store"
}

// Run executes the rebuild job.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &RebuildStats{StartedAt: startedAt}
	defer func() {
		stats.CompletedAt = time.Now()
		stats.Duration = stats.CompletedAt.Sub(startedAt)
		j.lastRebuildStats.Store(stats)
	}()

	if j.leaderboard == nil {
		// Running without Redis: nothing to resync.
		stats.Success = true
		return nil
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	researchers, err := j.researcherRepo.GetAll(ctx)
	if err != nil {
		stats.Error = err
		return fmt.Errorf("failed to load researchers: %w", err)
	}

	stats.TotalResearchers = len(researchers)
	j.logger.Info("resyncing leaderboard", "researchers", stats.TotalResearchers)

	err = j.breaker.Execute(ctx, func(ctx context.Context) error {
		return j.retrier.Do(ctx, func(ctx context.Context) error {
			if rebuildErr := j.leaderboard.Rebuild(ctx, researchers); rebuildErr != nil {
				return retry.Retryable(rebuildErr)
			}
			return nil
		})
	})
	if err != nil {
		stats.Error = err
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}

	stats.Success = true

	if j.eventPublisher != nil {
		_ = j.eventPublisher.Publish(newLeaderboardRebuiltEvent(stats.TotalResearchers))
	}

	return nil
}

// LastRebuildStats returns statistics from the last rebuild.
func (j *RebuildLeaderboardJob) LastRebuildStats() *RebuildStats {
	stats := j.lastRebuildStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RebuildStats)
}

// leaderboardRebuiltEvent is emitted after a successful full resync.
type leaderboardRebuiltEvent struct {
	shared.BaseEvent
	Entries int `json:"entries"`
}

func newLeaderboardRebuiltEvent(entries int) leaderboardRebuiltEvent {
	return leaderboardRebuiltEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLeaderboardRebuilt, "leaderboard"),
		Entries:   entries,
	}
}

// Payload implements shared.Event.
func (e leaderboardRebuiltEvent) Payload() map[string]interface{} {
	payload := e.BaseEvent.Payload()
	payload["entries"] = e.Entries
	return payload
}
