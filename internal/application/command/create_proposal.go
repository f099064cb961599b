package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PROPOSAL COMMAND
// Создаёт предложение исследования и начисляет автору фиксированные очки
// вклада (20). Значки проверяются сразу после начисления.
// ══════════════════════════════════════════════════════════════════════════════

// CreateProposalCommand содержит данные нового предложения.
type CreateProposalCommand struct {
	// ResearcherID - ID исследователя-автора (разрешается из принципала
	// вызывающего в слое интерфейса).
	ResearcherID string

	// Title - название исследования.
	Title string

	// Description - описание исследования.
	Description string

	// Methodology - методология исследования.
	Methodology string

	// FundingTarget - целевая сумма финансирования (строго положительная).
	FundingTarget int64
}

// Validate проверяет идентификатор автора.
func (c CreateProposalCommand) Validate() error {
	if _, err := shared.NewEntityID(c.ResearcherID); err != nil {
		return err
	}
	return nil
}

// CreateProposalResult содержит результат создания предложения.
type CreateProposalResult struct {
	// ProposalID - ID созданного предложения.
	ProposalID string

	// Stage - начальная фаза (всегда draft).
	Stage string

	// PointsAwarded - начисленные автору очки.
	PointsAwarded shared.Points

	// TotalPoints - очки автора после начисления.
	TotalPoints shared.Points

	// BadgesUnlocked - значки, выданные этим начислением.
	BadgesUnlocked []researcher.Badge
}

// CreateProposalHandler обрабатывает команду создания предложения.
type CreateProposalHandler struct {
	proposalRepo   proposal.Repository
	researcherRepo researcher.Repository
	engine         *researcher.Engine
	eventPublisher shared.EventPublisher
}

// NewCreateProposalHandler создаёт обработчик.
func NewCreateProposalHandler(
	proposalRepo proposal.Repository,
	researcherRepo researcher.Repository,
	engine *researcher.Engine,
	eventPublisher shared.EventPublisher,
) *CreateProposalHandler {
	return &CreateProposalHandler{
		proposalRepo:   proposalRepo,
		researcherRepo: researcherRepo,
		engine:         engine,
		eventPublisher: eventPublisher,
	}
}

// Handle выполняет создание предложения.
func (h *CreateProposalHandler) Handle(ctx context.Context, cmd CreateProposalCommand) (*CreateProposalResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	author, err := h.researcherRepo.GetByID(ctx, cmd.ResearcherID)
	if err != nil {
		if err == researcher.ErrResearcherNotFound {
			return nil, shared.ErrResearcherNotFound
		}
		return nil, shared.WrapError("proposal", "Create", shared.ErrInternal, "failed to load researcher", err)
	}

	p, err := proposal.NewProposal(proposal.NewProposalParams{
		ID:            uuid.NewString(),
		ResearcherID:  author.ID,
		Title:         cmd.Title,
		Description:   cmd.Description,
		Methodology:   cmd.Methodology,
		FundingTarget: shared.FundingAmount(cmd.FundingTarget),
	})
	if err != nil {
		return nil, err
	}

	if err := h.proposalRepo.Create(ctx, p); err != nil {
		return nil, shared.WrapError("proposal", "Create", shared.ErrInternal, "failed to persist proposal", err)
	}

	// Начисление очков - после сохранения предложения: запись о вкладе
	// не должна появиться раньше самого вклада.
	contribution := researcher.ContributionEvent{
		Kind:           researcher.ContributionProposal,
		ContributionID: p.ID,
		Points:         researcher.PointsProposalCreation,
		OccurredAt:     p.Timeline,
	}

	unlocked, err := h.engine.Apply(author, contribution)
	if err != nil {
		return nil, shared.WrapError("proposal", "Create", shared.ErrInternal, "failed to award points", err)
	}

	if err := h.researcherRepo.Update(ctx, author); err != nil {
		return nil, shared.WrapError("proposal", "Create", shared.ErrInternal, "failed to persist researcher points", err)
	}

	h.publishEvents(p, author, contribution, unlocked)

	return &CreateProposalResult{
		ProposalID:     p.ID,
		Stage:          string(p.Stage),
		PointsAwarded:  contribution.Points,
		TotalPoints:    author.TotalPoints,
		BadgesUnlocked: unlocked,
	}, nil
}

// publishEvents публикует события создания, начисления очков и значков.
func (h *CreateProposalHandler) publishEvents(
	p *proposal.Proposal,
	author *researcher.Researcher,
	contribution researcher.ContributionEvent,
	unlocked []researcher.Badge,
) {
	if h.eventPublisher == nil {
		return
	}

	_ = h.eventPublisher.Publish(proposal.NewCreatedEvent(p))
	_ = h.eventPublisher.Publish(researcher.NewPointsAwardedEvent(author, contribution))
	for _, badge := range unlocked {
		_ = h.eventPublisher.Publish(researcher.NewBadgeUnlockedEvent(author, badge))
	}
}
