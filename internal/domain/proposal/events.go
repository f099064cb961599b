package proposal

import (
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// CreatedEvent - предложение создано.
type CreatedEvent struct {
	shared.BaseEvent
	ResearcherID  string
	Title         string
	FundingTarget shared.FundingAmount
}

// NewCreatedEvent создаёт событие создания предложения.
func NewCreatedEvent(p *Proposal) CreatedEvent {
	return CreatedEvent{
		BaseEvent:     shared.NewBaseEvent(shared.EventProposalCreated, p.ID),
		ResearcherID:  p.ResearcherID,
		Title:         p.Title,
		FundingTarget: p.FundingTarget,
	}
}

// Payload возвращает данные события для сериализации.
func (e CreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"proposal_id":    e.AggregateId,
		"researcher_id":  e.ResearcherID,
		"title":          e.Title,
		"funding_target": e.FundingTarget.Int64(),
	}
}

// FundedEvent - предложение получило взнос.
type FundedEvent struct {
	shared.BaseEvent
	Amount         shared.FundingAmount
	CurrentFunding shared.FundingAmount
	FundingTarget  shared.FundingAmount
	StageAdvanced  bool
	Stage          Stage
}

// NewFundedEvent создаёт событие финансирования.
func NewFundedEvent(p *Proposal, amount shared.FundingAmount, stageAdvanced bool) FundedEvent {
	return FundedEvent{
		BaseEvent:      shared.NewBaseEvent(shared.EventProposalFunded, p.ID),
		Amount:         amount,
		CurrentFunding: p.CurrentFunding,
		FundingTarget:  p.FundingTarget,
		StageAdvanced:  stageAdvanced,
		Stage:          p.Stage,
	}
}

// Payload возвращает данные события для сериализации.
func (e FundedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"proposal_id":     e.AggregateId,
		"amount":          e.Amount.Int64(),
		"current_funding": e.CurrentFunding.Int64(),
		"funding_target":  e.FundingTarget.Int64(),
		"stage_advanced":  e.StageAdvanced,
		"stage":           string(e.Stage),
	}
}

// StageAdvancedEvent - фаза предложения продвинута внешним вызовом.
type StageAdvancedEvent struct {
	shared.BaseEvent
	OldStage Stage
	NewStage Stage
}

// NewStageAdvancedEvent создаёт событие смены фазы.
func NewStageAdvancedEvent(p *Proposal, oldStage Stage) StageAdvancedEvent {
	return StageAdvancedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventProposalStageAdvanced, p.ID),
		OldStage:  oldStage,
		NewStage:  p.Stage,
	}
}

// Payload возвращает данные события для сериализации.
func (e StageAdvancedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"proposal_id": e.AggregateId,
		"old_stage":   string(e.OldStage),
		"new_stage":   string(e.NewStage),
	}
}
