package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE MILESTONE COMMAND
// Создаёт этап в контексте существующего предложения. Этап рождается в
// статусе pending и дописывается в список этапов предложения.
// ══════════════════════════════════════════════════════════════════════════════

// CreateMilestoneCommand содержит данные нового этапа.
type CreateMilestoneCommand struct {
	// ProposalID - ID владеющего предложения.
	ProposalID string

	// Description - описание этапа.
	Description string

	// RequiredFunding - финансирование, необходимое для этапа.
	RequiredFunding int64

	// Deadline - срок этапа (нулевое значение = без срока).
	Deadline time.Time
}

// Validate проверяет идентификатор предложения.
func (c CreateMilestoneCommand) Validate() error {
	if _, err := shared.NewEntityID(c.ProposalID); err != nil {
		return err
	}
	return nil
}

// CreateMilestoneResult содержит результат создания этапа.
type CreateMilestoneResult struct {
	// MilestoneID - ID созданного этапа.
	MilestoneID string

	// ProposalID - ID владеющего предложения.
	ProposalID string

	// Status - начальный статус (всегда pending).
	Status string
}

// CreateMilestoneHandler обрабатывает команду создания этапа.
type CreateMilestoneHandler struct {
	milestoneRepo  milestone.Repository
	proposalRepo   proposal.Repository
	eventPublisher shared.EventPublisher
}

// NewCreateMilestoneHandler создаёт обработчик.
func NewCreateMilestoneHandler(
	milestoneRepo milestone.Repository,
	proposalRepo proposal.Repository,
	eventPublisher shared.EventPublisher,
) *CreateMilestoneHandler {
	return &CreateMilestoneHandler{
		milestoneRepo:  milestoneRepo,
		proposalRepo:   proposalRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle выполняет создание этапа.
func (h *CreateMilestoneHandler) Handle(ctx context.Context, cmd CreateMilestoneCommand) (*CreateMilestoneResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.proposalRepo.GetByID(ctx, cmd.ProposalID)
	if err != nil {
		if err == proposal.ErrProposalNotFound {
			return nil, shared.ErrProposalNotFound
		}
		return nil, shared.WrapError("milestone", "Create", shared.ErrInternal, "failed to load proposal", err)
	}

	m, err := milestone.NewMilestone(milestone.NewMilestoneParams{
		ID:              uuid.NewString(),
		Description:     cmd.Description,
		RequiredFunding: shared.FundingAmount(cmd.RequiredFunding),
		Deadline:        cmd.Deadline,
	})
	if err != nil {
		return nil, err
	}

	if err := h.milestoneRepo.Create(ctx, m); err != nil {
		return nil, shared.WrapError("milestone", "Create", shared.ErrInternal, "failed to persist milestone", err)
	}

	p.AttachMilestone(m.ID)
	if err := h.proposalRepo.Update(ctx, p); err != nil {
		return nil, shared.WrapError("milestone", "Create", shared.ErrInternal, "failed to attach milestone", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(milestone.NewCreatedEvent(m, p.ID))
	}

	return &CreateMilestoneResult{
		MilestoneID: m.ID,
		ProposalID:  p.ID,
		Status:      string(m.Status),
	}, nil
}
