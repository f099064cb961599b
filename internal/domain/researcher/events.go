package researcher

import (
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// События домена исследователей, на которые реагируют другие части
// системы (кеш лидерборда, логирование значков).
// ══════════════════════════════════════════════════════════════════════════════

// RegisteredEvent - исследователь зарегистрировался в реестре.
type RegisteredEvent struct {
	shared.BaseEvent
	Name  string
	Email string
}

// NewRegisteredEvent создаёт событие регистрации.
func NewRegisteredEvent(r *Researcher) RegisteredEvent {
	return RegisteredEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventResearcherRegistered, r.ID),
		Name:      r.Name.String(),
		Email:     r.Email.String(),
	}
}

// Payload возвращает данные события для сериализации.
func (e RegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"researcher_id": e.AggregateId,
		"name":          e.Name,
		"email":         e.Email,
	}
}

// PointsAwardedEvent - исследователю начислены очки за вклад.
type PointsAwardedEvent struct {
	shared.BaseEvent
	Kind           ContributionKind
	ContributionID string
	Delta          shared.Points
	TotalPoints    shared.Points
}

// NewPointsAwardedEvent создаёт событие начисления очков.
func NewPointsAwardedEvent(r *Researcher, event ContributionEvent) PointsAwardedEvent {
	return PointsAwardedEvent{
		BaseEvent:      shared.NewBaseEvent(shared.EventPointsAwarded, r.ID),
		Kind:           event.Kind,
		ContributionID: event.ContributionID,
		Delta:          event.Points,
		TotalPoints:    r.TotalPoints,
	}
}

// Payload возвращает данные события для сериализации.
func (e PointsAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"researcher_id":   e.AggregateId,
		"kind":            string(e.Kind),
		"contribution_id": e.ContributionID,
		"delta":           e.Delta.Int64(),
		"total_points":    e.TotalPoints.Int64(),
	}
}

// BadgeUnlockedEvent - исследователь получил значок.
type BadgeUnlockedEvent struct {
	shared.BaseEvent
	BadgeID     string
	BadgeName   string
	TotalPoints shared.Points
}

// NewBadgeUnlockedEvent создаёт событие выдачи значка.
func NewBadgeUnlockedEvent(r *Researcher, badge Badge) BadgeUnlockedEvent {
	return BadgeUnlockedEvent{
		BaseEvent:   shared.NewBaseEvent(shared.EventBadgeUnlocked, r.ID),
		BadgeID:     badge.ID,
		BadgeName:   badge.Name,
		TotalPoints: r.TotalPoints,
	}
}

// Payload возвращает данные события для сериализации.
func (e BadgeUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"researcher_id": e.AggregateId,
		"badge_id":      e.BadgeID,
		"badge_name":    e.BadgeName,
		"total_points":  e.TotalPoints.Int64(),
	}
}
