package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT PROOF COMMAND
// Прикладывает доказательство воспроизведения к этапу. Статус этапа при
// этом НЕ меняется: завершение идёт только через верификацию.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitProofCommand содержит данные доказательства.
type SubmitProofCommand struct {
	// MilestoneID - ID этапа.
	MilestoneID string

	// MethodologyHash - контентный хеш методологии.
	MethodologyHash string

	// ResultsHash - контентный хеш результатов.
	ResultsHash string
}

// Validate проверяет идентификатор этапа.
func (c SubmitProofCommand) Validate() error {
	if _, err := shared.NewEntityID(c.MilestoneID); err != nil {
		return err
	}
	return nil
}

// SubmitProofResult содержит результат отправки доказательства.
type SubmitProofResult struct {
	// ProofID - ID созданного доказательства.
	ProofID string

	// MilestoneID - ID этапа.
	MilestoneID string

	// Status - статус доказательства (всегда pending).
	Status string

	// MilestoneStatus - статус этапа (не изменился).
	MilestoneStatus string
}

// SubmitProofHandler обрабатывает команду отправки доказательства.
type SubmitProofHandler struct {
	milestoneRepo  milestone.Repository
	proofRepo      milestone.ProofRepository
	eventPublisher shared.EventPublisher
}

// NewSubmitProofHandler создаёт обработчик.
func NewSubmitProofHandler(
	milestoneRepo milestone.Repository,
	proofRepo milestone.ProofRepository,
	eventPublisher shared.EventPublisher,
) *SubmitProofHandler {
	return &SubmitProofHandler{
		milestoneRepo:  milestoneRepo,
		proofRepo:      proofRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle выполняет отправку доказательства.
func (h *SubmitProofHandler) Handle(ctx context.Context, cmd SubmitProofCommand) (*SubmitProofResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	m, err := h.milestoneRepo.GetByID(ctx, cmd.MilestoneID)
	if err != nil {
		if err == milestone.ErrMilestoneNotFound {
			return nil, shared.ErrMilestoneNotFound
		}
		return nil, shared.WrapError("milestone", "SubmitProof", shared.ErrInternal, "failed to load milestone", err)
	}

	proof, err := milestone.NewProof(milestone.NewProofParams{
		ID:              uuid.NewString(),
		MilestoneID:     m.ID,
		MethodologyHash: cmd.MethodologyHash,
		ResultsHash:     cmd.ResultsHash,
	})
	if err != nil {
		return nil, err
	}

	if err := h.proofRepo.Create(ctx, proof); err != nil {
		return nil, shared.WrapError("milestone", "SubmitProof", shared.ErrInternal, "failed to persist proof", err)
	}

	m.AttachProof(proof.ID)
	if err := h.milestoneRepo.Update(ctx, m); err != nil {
		return nil, shared.WrapError("milestone", "SubmitProof", shared.ErrInternal, "failed to attach proof", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(milestone.NewProofSubmittedEvent(m, proof.ID))
	}

	return &SubmitProofResult{
		ProofID:         proof.ID,
		MilestoneID:     m.ID,
		Status:          string(proof.Status),
		MilestoneStatus: string(m.Status),
	}, nil
}
