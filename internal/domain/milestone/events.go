package milestone

import (
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// CreatedEvent - этап создан в контексте предложения.
type CreatedEvent struct {
	shared.BaseEvent
	ProposalID  string
	Description string
}

// NewCreatedEvent создаёт событие создания этапа.
func NewCreatedEvent(m *Milestone, proposalID string) CreatedEvent {
	return CreatedEvent{
		BaseEvent:   shared.NewBaseEvent(shared.EventMilestoneCreated, m.ID),
		ProposalID:  proposalID,
		Description: m.Description,
	}
}

// Payload возвращает данные события для сериализации.
func (e CreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"milestone_id": e.AggregateId,
		"proposal_id":  e.ProposalID,
		"description":  e.Description,
	}
}

// VerifiedEvent - этап верифицирован (pending→completed).
type VerifiedEvent struct {
	shared.BaseEvent
	ProposalID string
}

// NewVerifiedEvent создаёт событие верификации этапа.
func NewVerifiedEvent(m *Milestone, proposalID string) VerifiedEvent {
	return VerifiedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventMilestoneVerified, m.ID),
		ProposalID: proposalID,
	}
}

// Payload возвращает данные события для сериализации.
func (e VerifiedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"milestone_id": e.AggregateId,
		"proposal_id":  e.ProposalID,
	}
}

// ProofSubmittedEvent - к этапу приложено доказательство воспроизведения.
type ProofSubmittedEvent struct {
	shared.BaseEvent
	ProofID string
}

// NewProofSubmittedEvent создаёт событие отправки доказательства.
func NewProofSubmittedEvent(m *Milestone, proofID string) ProofSubmittedEvent {
	return ProofSubmittedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventProofSubmitted, m.ID),
		ProofID:   proofID,
	}
}

// Payload возвращает данные события для сериализации.
func (e ProofSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"milestone_id": e.AggregateId,
		"proof_id":     e.ProofID,
	}
}
