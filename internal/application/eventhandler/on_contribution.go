// Package eventhandler contains subscribers that keep derived state in step
// with domain events: the leaderboard cache, the profile cache, and the
// audit log of unlocked badges.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD UPDATER
// Подписывается на события вклада и регистрации: при каждом изменении
// очков запись рейтинга обновляется, а кеш профиля инвалидируется.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardUpdater обновляет рейтинг по событиям вклада.
type LeaderboardUpdater struct {
	researcherRepo researcher.Repository
	leaderboard    researcher.Leaderboard
	cache          researcher.Cache
	logger         *slog.Logger
}

// NewLeaderboardUpdater создаёт обработчик. Leaderboard и Cache могут быть
// nil - соответствующий шаг пропускается.
func NewLeaderboardUpdater(
	researcherRepo researcher.Repository,
	leaderboard researcher.Leaderboard,
	cache researcher.Cache,
	logger *slog.Logger,
) *LeaderboardUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardUpdater{
		researcherRepo: researcherRepo,
		leaderboard:    leaderboard,
		cache:          cache,
		logger:         logger,
	}
}

// Name implements shared.EventHandler.
func (h *LeaderboardUpdater) Name() string {
	return "leaderboard_updater"
}

// EventTypes возвращает типы событий, на которые подписывается обработчик.
func (h *LeaderboardUpdater) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventResearcherRegistered,
		shared.EventPointsAwarded,
		shared.EventBadgeUnlocked,
	}
}

// Handle implements shared.EventHandler.
func (h *LeaderboardUpdater) Handle(ctx context.Context, event shared.Event) error {
	researcherID := event.AggregateID()
	if researcherID == "" {
		return nil
	}

	r, err := h.researcherRepo.GetByID(ctx, researcherID)
	if err != nil {
		h.logger.Warn("leaderboard update skipped: researcher not loaded",
			"researcher_id", researcherID,
			"event_type", event.EventType(),
			"error", err,
		)
		return err
	}

	if h.leaderboard != nil {
		if err := h.leaderboard.UpdateScore(ctx, r); err != nil {
			h.logger.Error("failed to update leaderboard score",
				"researcher_id", researcherID,
				"error", err,
			)
			return err
		}
	}

	// Профиль в кеше устарел после начисления: следующее чтение
	// пройдёт через хранилище.
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, researcherID); err != nil {
			h.logger.Warn("failed to invalidate researcher cache",
				"researcher_id", researcherID,
				"error", err,
			)
		}
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE AUDIT LOGGER
// ══════════════════════════════════════════════════════════════════════════════

// BadgeAuditLogger пишет структурированную запись о каждом выданном значке.
type BadgeAuditLogger struct {
	logger *slog.Logger
}

// NewBadgeAuditLogger создаёт обработчик аудита значков.
func NewBadgeAuditLogger(logger *slog.Logger) *BadgeAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgeAuditLogger{logger: logger}
}

// Name implements shared.EventHandler.
func (h *BadgeAuditLogger) Name() string {
	return "badge_audit_logger"
}

// Handle implements shared.EventHandler.
func (h *BadgeAuditLogger) Handle(_ context.Context, event shared.Event) error {
	if event.EventType() != shared.EventBadgeUnlocked {
		return nil
	}

	payload := event.Payload()
	h.logger.Info("badge unlocked",
		"researcher_id", event.AggregateID(),
		"badge_id", payload["badge_id"],
		"badge_name", payload["badge_name"],
		"total_points", payload["total_points"],
	)
	return nil
}

// RegisterAll подписывает стандартный набор обработчиков на шину.
func RegisterAll(bus shared.EventBus, updater *LeaderboardUpdater, badgeLog *BadgeAuditLogger) error {
	for _, eventType := range updater.EventTypes() {
		if err := bus.Subscribe(eventType, updater); err != nil {
			return err
		}
	}
	return bus.Subscribe(shared.EventBadgeUnlocked, badgeLog)
}
