package command

import (
	"context"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FUND PROPOSAL COMMAND
// Принимает взнос в предложение. Взнос от 100 единиц; накопление монотонно.
// При первом достижении цели фаза автоматически переходит draft→funding.
// ══════════════════════════════════════════════════════════════════════════════

// FundProposalCommand содержит данные взноса.
type FundProposalCommand struct {
	// ProposalID - ID финансируемого предложения.
	ProposalID string

	// Amount - сумма взноса (минимум 100 единиц).
	Amount int64
}

// Validate проверяет идентификатор предложения.
func (c FundProposalCommand) Validate() error {
	if _, err := shared.NewEntityID(c.ProposalID); err != nil {
		return err
	}
	return nil
}

// FundProposalResult содержит результат взноса.
type FundProposalResult struct {
	// ProposalID - ID предложения.
	ProposalID string

	// CurrentFunding - накопленное финансирование после взноса.
	CurrentFunding shared.FundingAmount

	// FundingTarget - целевая сумма.
	FundingTarget shared.FundingAmount

	// Stage - фаза после взноса.
	Stage string

	// StageAdvanced - произошёл ли переход draft→funding на этом взносе.
	StageAdvanced bool

	// FullyFunded - достигнута ли цель.
	FullyFunded bool
}

// FundProposalHandler обрабатывает команду финансирования.
type FundProposalHandler struct {
	proposalRepo   proposal.Repository
	eventPublisher shared.EventPublisher
}

// NewFundProposalHandler создаёт обработчик.
func NewFundProposalHandler(
	proposalRepo proposal.Repository,
	eventPublisher shared.EventPublisher,
) *FundProposalHandler {
	return &FundProposalHandler{
		proposalRepo:   proposalRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle выполняет взнос в предложение.
func (h *FundProposalHandler) Handle(ctx context.Context, cmd FundProposalCommand) (*FundProposalResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.proposalRepo.GetByID(ctx, cmd.ProposalID)
	if err != nil {
		if err == proposal.ErrProposalNotFound {
			return nil, shared.ErrProposalNotFound
		}
		return nil, shared.WrapError("proposal", "Fund", shared.ErrInternal, "failed to load proposal", err)
	}

	advanced, err := p.AddFunding(shared.FundingAmount(cmd.Amount))
	if err != nil {
		if err == proposal.ErrFundingTooSmall {
			return nil, shared.ErrFundingBelowMinimum
		}
		return nil, err
	}

	if err := h.proposalRepo.Update(ctx, p); err != nil {
		return nil, shared.WrapError("proposal", "Fund", shared.ErrInternal, "failed to persist funding", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(proposal.NewFundedEvent(p, shared.FundingAmount(cmd.Amount), advanced))
		if advanced {
			_ = h.eventPublisher.Publish(proposal.NewStageAdvancedEvent(p, proposal.StageDraft))
		}
	}

	return &FundProposalResult{
		ProposalID:     p.ID,
		CurrentFunding: p.CurrentFunding,
		FundingTarget:  p.FundingTarget,
		Stage:          string(p.Stage),
		StageAdvanced:  advanced,
		FullyFunded:    p.IsFullyFunded(),
	}, nil
}
