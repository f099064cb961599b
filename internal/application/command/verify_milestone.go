package command

import (
	"context"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERIFY MILESTONE COMMAND
// Верифицирует этап в контексте предложения: pending→completed.
// Отсутствие предложения и отсутствие этапа дают одну и ту же ошибку
// NotFound с объединённым сообщением.
// ══════════════════════════════════════════════════════════════════════════════

// ErrProposalOrMilestoneNotFound - предложение или этап не найдены.
// Какая именно сущность отсутствует, вызывающему не сообщается.
var ErrProposalOrMilestoneNotFound = shared.NewDomainError(
	"milestone", "Verify", shared.ErrNotFound, "proposal or milestone not found",
)

// VerifyMilestoneCommand содержит данные верификации.
type VerifyMilestoneCommand struct {
	// ProposalID - ID предложения, владеющего этапом.
	ProposalID string

	// MilestoneID - ID верифицируемого этапа.
	MilestoneID string
}

// Validate проверяет оба идентификатора.
func (c VerifyMilestoneCommand) Validate() error {
	if _, err := shared.NewEntityID(c.ProposalID); err != nil {
		return err
	}
	if _, err := shared.NewEntityID(c.MilestoneID); err != nil {
		return err
	}
	return nil
}

// VerifyMilestoneResult содержит результат верификации.
type VerifyMilestoneResult struct {
	// MilestoneID - ID этапа.
	MilestoneID string

	// ProposalID - ID предложения.
	ProposalID string

	// Status - статус этапа после верификации (completed).
	Status string
}

// VerifyMilestoneConfig содержит настройки обработчика.
type VerifyMilestoneConfig struct {
	// RequireVerifiedProof требует хотя бы одно верифицированное
	// доказательство перед завершением этапа. По умолчанию выключено:
	// верификация этапа не зависит от доказательств.
	RequireVerifiedProof bool
}

// VerifyMilestoneHandler обрабатывает команду верификации этапа.
type VerifyMilestoneHandler struct {
	milestoneRepo  milestone.Repository
	proofRepo      milestone.ProofRepository
	proposalRepo   proposal.Repository
	eventPublisher shared.EventPublisher
	config         VerifyMilestoneConfig
}

// NewVerifyMilestoneHandler создаёт обработчик.
func NewVerifyMilestoneHandler(
	milestoneRepo milestone.Repository,
	proofRepo milestone.ProofRepository,
	proposalRepo proposal.Repository,
	eventPublisher shared.EventPublisher,
	config VerifyMilestoneConfig,
) *VerifyMilestoneHandler {
	return &VerifyMilestoneHandler{
		milestoneRepo:  milestoneRepo,
		proofRepo:      proofRepo,
		proposalRepo:   proposalRepo,
		eventPublisher: eventPublisher,
		config:         config,
	}
}

// Handle выполняет верификацию этапа.
func (h *VerifyMilestoneHandler) Handle(ctx context.Context, cmd VerifyMilestoneCommand) (*VerifyMilestoneResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.proposalRepo.GetByID(ctx, cmd.ProposalID)
	if err != nil {
		if err == proposal.ErrProposalNotFound {
			return nil, ErrProposalOrMilestoneNotFound
		}
		return nil, shared.WrapError("milestone", "Verify", shared.ErrInternal, "failed to load proposal", err)
	}

	m, err := h.milestoneRepo.GetByID(ctx, cmd.MilestoneID)
	if err != nil {
		if err == milestone.ErrMilestoneNotFound {
			return nil, ErrProposalOrMilestoneNotFound
		}
		return nil, shared.WrapError("milestone", "Verify", shared.ErrInternal, "failed to load milestone", err)
	}

	// Этап, не привязанный к предложению, неотличим от отсутствующего.
	if !p.HasMilestone(m.ID) {
		return nil, ErrProposalOrMilestoneNotFound
	}

	if h.config.RequireVerifiedProof {
		if err := h.checkVerifiedProof(ctx, m.ID); err != nil {
			return nil, err
		}
	}

	if err := m.Verify(); err != nil {
		if err == milestone.ErrNotPending {
			return nil, shared.ErrMilestoneNotPending
		}
		return nil, err
	}

	if err := h.milestoneRepo.Update(ctx, m); err != nil {
		return nil, shared.WrapError("milestone", "Verify", shared.ErrInternal, "failed to persist milestone", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(milestone.NewVerifiedEvent(m, p.ID))
	}

	return &VerifyMilestoneResult{
		MilestoneID: m.ID,
		ProposalID:  p.ID,
		Status:      string(m.Status),
	}, nil
}

// checkVerifiedProof проверяет наличие верифицированного доказательства.
func (h *VerifyMilestoneHandler) checkVerifiedProof(ctx context.Context, milestoneID string) error {
	proofs, err := h.proofRepo.GetByMilestoneID(ctx, milestoneID)
	if err != nil {
		return shared.WrapError("milestone", "Verify", shared.ErrInternal, "failed to load proofs", err)
	}

	for _, proof := range proofs {
		if proof.Status == milestone.ProofVerified {
			return nil
		}
	}

	return shared.ErrNoVerifiedProof
}
