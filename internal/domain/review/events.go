package review

import (
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// SubmittedEvent - рецензия отправлена и принята.
type SubmittedEvent struct {
	shared.BaseEvent
	ProposalID   string
	ReviewerID   string
	Score        int
	PointsEarned shared.Points
}

// NewSubmittedEvent создаёт событие отправки рецензии.
func NewSubmittedEvent(r *Review) SubmittedEvent {
	return SubmittedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventReviewSubmitted, r.ID),
		ProposalID:   r.ProposalID,
		ReviewerID:   r.ReviewerID,
		Score:        r.Score,
		PointsEarned: r.PointsEarned,
	}
}

// Payload возвращает данные события для сериализации.
func (e SubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"review_id":     e.AggregateId,
		"proposal_id":   e.ProposalID,
		"reviewer_id":   e.ReviewerID,
		"score":         e.Score,
		"points_earned": e.PointsEarned.Int64(),
	}
}
