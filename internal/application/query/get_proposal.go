package query

import (
	"context"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROPOSAL QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ContributorPointsDTO - запись ведомости вкладов предложения.
type ContributorPointsDTO struct {
	// ReviewerID - ID исследователя-рецензента.
	ReviewerID string `json:"reviewer_id"`

	// Points - заработанные очки.
	Points int64 `json:"points"`
}

// ProposalDTO - представление предложения для ответа.
type ProposalDTO struct {
	// ID - внутренний идентификатор.
	ID string `json:"id"`

	// ResearcherID - ID исследователя-владельца.
	ResearcherID string `json:"researcher_id"`

	// Title - название исследования.
	Title string `json:"title"`

	// Description - описание исследования.
	Description string `json:"description"`

	// Methodology - методология исследования.
	Methodology string `json:"methodology"`

	// Milestones - ID этапов в порядке создания.
	Milestones []string `json:"milestones"`

	// FundingTarget - целевая сумма финансирования.
	FundingTarget int64 `json:"funding_target"`

	// CurrentFunding - накопленное финансирование.
	CurrentFunding int64 `json:"current_funding"`

	// Stage - текущая фаза жизненного цикла.
	Stage string `json:"stage"`

	// Reviews - ID рецензий в порядке отправки.
	Reviews []string `json:"reviews"`

	// ContributorPoints - ведомость вкладов рецензентов.
	ContributorPoints []ContributorPointsDTO `json:"contributor_points"`

	// FullyFunded - достигнута ли цель финансирования.
	FullyFunded bool `json:"fully_funded"`

	// Timeline - время создания.
	Timeline time.Time `json:"timeline"`
}

// ToProposalDTO конвертирует доменную сущность в DTO.
func ToProposalDTO(p *proposal.Proposal) ProposalDTO {
	contributors := make([]ContributorPointsDTO, len(p.ContributorPoints))
	for i, cp := range p.ContributorPoints {
		contributors[i] = ContributorPointsDTO{
			ReviewerID: cp.ReviewerID,
			Points:     cp.Points.Int64(),
		}
	}

	return ProposalDTO{
		ID:                p.ID,
		ResearcherID:      p.ResearcherID,
		Title:             p.Title,
		Description:       p.Description,
		Methodology:       p.Methodology,
		Milestones:        p.Milestones,
		FundingTarget:     p.FundingTarget.Int64(),
		CurrentFunding:    p.CurrentFunding.Int64(),
		Stage:             string(p.Stage),
		Reviews:           p.Reviews,
		ContributorPoints: contributors,
		FullyFunded:       p.IsFullyFunded(),
		Timeline:          p.Timeline,
	}
}

// GetProposalByIDQuery содержит параметры запроса предложения.
type GetProposalByIDQuery struct {
	// ProposalID - внутренний ID предложения.
	ProposalID string
}

// Validate проверяет идентификатор.
func (q GetProposalByIDQuery) Validate() error {
	_, err := shared.NewEntityID(q.ProposalID)
	return err
}

// GetProposalHandler обрабатывает запрос предложения по ID.
type GetProposalHandler struct {
	proposalRepo proposal.Repository
}

// NewGetProposalHandler создаёт обработчик.
func NewGetProposalHandler(proposalRepo proposal.Repository) *GetProposalHandler {
	return &GetProposalHandler{proposalRepo: proposalRepo}
}

// Handle выполняет запрос предложения.
func (h *GetProposalHandler) Handle(ctx context.Context, q GetProposalByIDQuery) (*ProposalDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	p, err := h.proposalRepo.GetByID(ctx, q.ProposalID)
	if err != nil {
		if err == proposal.ErrProposalNotFound {
			return nil, shared.ErrProposalNotFound
		}
		return nil, shared.WrapError("proposal", "Find", shared.ErrInternal, "failed to load proposal", err)
	}

	dto := ToProposalDTO(p)
	return &dto, nil
}
