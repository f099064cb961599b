package query

import (
	"context"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/shared"
	"github.com/reprofund/research-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MILESTONE QUERY
// Возвращает этап вместе с его доказательствами воспроизведения.
// ══════════════════════════════════════════════════════════════════════════════

// ProofDTO - представление доказательства для ответа.
type ProofDTO struct {
	// ID - внутренний идентификатор.
	ID string `json:"id"`

	// MilestoneID - ID этапа.
	MilestoneID string `json:"milestone_id"`

	// MethodologyHash - хеш методологии.
	MethodologyHash string `json:"methodology_hash"`

	// ResultsHash - хеш результатов.
	ResultsHash string `json:"results_hash"`

	// Status - статус доказательства.
	Status string `json:"status"`

	// SubmittedAt - время отправки.
	SubmittedAt time.Time `json:"submitted_at"`
}

// MilestoneDTO - представление этапа для ответа.
type MilestoneDTO struct {
	// ID - внутренний идентификатор.
	ID string `json:"id"`

	// Description - описание этапа.
	Description string `json:"description"`

	// RequiredFunding - необходимое финансирование.
	RequiredFunding int64 `json:"required_funding"`

	// Deadline - срок этапа (null = без срока).
	Deadline *time.Time `json:"deadline,omitempty"`

	// Status - текущий статус.
	Status string `json:"status"`

	// Overdue - истёк ли срок незавершённого этапа.
	Overdue bool `json:"overdue"`

	// Proofs - доказательства этапа в порядке отправки.
	Proofs []ProofDTO `json:"proofs"`

	// CreatedAt - время создания.
	CreatedAt time.Time `json:"created_at"`
}

// GetMilestoneByIDQuery содержит параметры запроса этапа.
type GetMilestoneByIDQuery struct {
	// MilestoneID - внутренний ID этапа.
	MilestoneID string
}

// Validate проверяет идентификатор.
func (q GetMilestoneByIDQuery) Validate() error {
	_, err := shared.NewEntityID(q.MilestoneID)
	return err
}

// GetMilestoneHandler обрабатывает запрос этапа по ID.
type GetMilestoneHandler struct {
	milestoneRepo milestone.Repository
	proofRepo     milestone.ProofRepository
}

// NewGetMilestoneHandler создаёт обработчик.
func NewGetMilestoneHandler(milestoneRepo milestone.Repository, proofRepo milestone.ProofRepository) *GetMilestoneHandler {
	return &GetMilestoneHandler{
		milestoneRepo: milestoneRepo,
		proofRepo:     proofRepo,
	}
}

// Handle выполняет запрос этапа.
func (h *GetMilestoneHandler) Handle(ctx context.Context, q GetMilestoneByIDQuery) (*MilestoneDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m, err := h.milestoneRepo.GetByID(ctx, q.MilestoneID)
	if err != nil {
		if err == milestone.ErrMilestoneNotFound {
			return nil, shared.ErrMilestoneNotFound
		}
		return nil, shared.WrapError("milestone", "Find", shared.ErrInternal, "failed to load milestone", err)
	}

	proofs, err := h.proofRepo.GetByMilestoneID(ctx, m.ID)
	if err != nil {
		return nil, shared.WrapError("milestone", "Find", shared.ErrInternal, "failed to load proofs", err)
	}

	dto := MilestoneDTO{
		ID:              m.ID,
		Description:     m.Description,
		RequiredFunding: m.RequiredFunding.Int64(),
		Status:          string(m.Status),
		Overdue:         m.IsOverdue(timeutil.Now()),
		Proofs:          make([]ProofDTO, len(proofs)),
		CreatedAt:       m.CreatedAt,
	}

	if !m.Deadline.IsZero() {
		deadline := m.Deadline
		dto.Deadline = &deadline
	}

	for i, p := range proofs {
		dto.Proofs[i] = ProofDTO{
			ID:              p.ID,
			MilestoneID:     p.MilestoneID,
			MethodologyHash: p.MethodologyHash,
			ResultsHash:     p.ResultsHash,
			Status:          string(p.Status),
			SubmittedAt:     p.SubmittedAt,
		}
	}

	return &dto, nil
}
