package command

import (
	"context"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADVANCE PROPOSAL STAGE COMMAND
// Продвигает фазу предложения внешним вызовом (funding→in-progress,
// in-progress→completed). Откат назад запрещён.
// ══════════════════════════════════════════════════════════════════════════════

// AdvanceProposalStageCommand содержит данные смены фазы.
type AdvanceProposalStageCommand struct {
	// ProposalID - ID предложения.
	ProposalID string

	// TargetStage - целевая фаза.
	TargetStage string
}

// Validate проверяет идентификатор и наличие целевой фазы.
func (c AdvanceProposalStageCommand) Validate() error {
	if _, err := shared.NewEntityID(c.ProposalID); err != nil {
		return err
	}
	if c.TargetStage == "" {
		return shared.NewDomainError("proposal", "AdvanceStage", shared.ErrEmptyValue, "target stage is required")
	}
	return nil
}

// AdvanceProposalStageResult содержит результат смены фазы.
type AdvanceProposalStageResult struct {
	// ProposalID - ID предложения.
	ProposalID string

	// OldStage - фаза до перехода.
	OldStage string

	// NewStage - фаза после перехода.
	NewStage string
}

// AdvanceProposalStageHandler обрабатывает команду смены фазы.
type AdvanceProposalStageHandler struct {
	proposalRepo   proposal.Repository
	eventPublisher shared.EventPublisher
}

// NewAdvanceProposalStageHandler создаёт обработчик.
func NewAdvanceProposalStageHandler(
	proposalRepo proposal.Repository,
	eventPublisher shared.EventPublisher,
) *AdvanceProposalStageHandler {
	return &AdvanceProposalStageHandler{
		proposalRepo:   proposalRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle выполняет смену фазы предложения.
func (h *AdvanceProposalStageHandler) Handle(ctx context.Context, cmd AdvanceProposalStageCommand) (*AdvanceProposalStageResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	target := proposal.Stage(cmd.TargetStage)
	if !target.IsValid() {
		return nil, shared.NewDomainError("proposal", "AdvanceStage", shared.ErrInvalidPayload, "unknown proposal stage: "+cmd.TargetStage)
	}

	p, err := h.proposalRepo.GetByID(ctx, cmd.ProposalID)
	if err != nil {
		if err == proposal.ErrProposalNotFound {
			return nil, shared.ErrProposalNotFound
		}
		return nil, shared.WrapError("proposal", "AdvanceStage", shared.ErrInternal, "failed to load proposal", err)
	}

	oldStage := p.Stage
	if err := p.AdvanceStage(target); err != nil {
		if err == proposal.ErrStageRegression {
			return nil, shared.ErrStageRegression
		}
		return nil, err
	}

	if err := h.proposalRepo.Update(ctx, p); err != nil {
		return nil, shared.WrapError("proposal", "AdvanceStage", shared.ErrInternal, "failed to persist stage", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(proposal.NewStageAdvancedEvent(p, oldStage))
	}

	return &AdvanceProposalStageResult{
		ProposalID: p.ID,
		OldStage:   string(oldStage),
		NewStage:   string(p.Stage),
	}, nil
}
