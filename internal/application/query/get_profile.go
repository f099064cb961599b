package query

import (
	"context"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RESEARCHER PROFILE QUERY
// Агрегированный профиль для вызывающего: запись исследователя, его
// предложения и позиция в рейтинге.
// ══════════════════════════════════════════════════════════════════════════════

// GetResearcherProfileQuery содержит параметры запроса профиля.
type GetResearcherProfileQuery struct {
	// Owner - принципал вызывающего.
	Owner shared.Principal
}

// Validate проверяет принципал.
func (q GetResearcherProfileQuery) Validate() error {
	if !q.Owner.IsValid() {
		return shared.NewDomainError("researcher", "Profile", shared.ErrEmptyValue, "owner principal is required")
	}
	return nil
}

// ResearcherProfileResult содержит агрегированный профиль.
type ResearcherProfileResult struct {
	// Researcher - запись исследователя.
	Researcher ResearcherDTO `json:"researcher"`

	// Proposals - предложения исследователя (может быть пустым).
	Proposals []ProposalDTO `json:"proposals"`

	// Rank - позиция в рейтинге (0 = вне рейтинга).
	Rank int `json:"rank"`
}

// GetResearcherProfileHandler обрабатывает запрос профиля.
type GetResearcherProfileHandler struct {
	researcherRepo researcher.Repository
	proposalRepo   proposal.Repository
	leaderboard    researcher.Leaderboard
}

// NewGetResearcherProfileHandler создаёт обработчик. Leaderboard может
// быть nil - тогда позиция не заполняется.
func NewGetResearcherProfileHandler(
	researcherRepo researcher.Repository,
	proposalRepo proposal.Repository,
	leaderboard researcher.Leaderboard,
) *GetResearcherProfileHandler {
	return &GetResearcherProfileHandler{
		researcherRepo: researcherRepo,
		proposalRepo:   proposalRepo,
		leaderboard:    leaderboard,
	}
}

// Handle выполняет запрос профиля.
func (h *GetResearcherProfileHandler) Handle(ctx context.Context, q GetResearcherProfileQuery) (*ResearcherProfileResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	r, err := h.researcherRepo.GetByOwner(ctx, q.Owner)
	if err != nil {
		if err == researcher.ErrResearcherNotFound {
			return nil, shared.ErrOwnerHasNoResearcher
		}
		return nil, shared.WrapError("researcher", "Profile", shared.ErrInternal, "failed to load researcher", err)
	}

	proposals, err := h.proposalRepo.GetByResearcherID(ctx, r.ID)
	if err != nil {
		return nil, shared.WrapError("researcher", "Profile", shared.ErrInternal, "failed to load proposals", err)
	}

	result := &ResearcherProfileResult{
		Researcher: ToResearcherDTO(r),
		Proposals:  make([]ProposalDTO, len(proposals)),
	}

	for i, p := range proposals {
		result.Proposals[i] = ToProposalDTO(p)
	}

	// Позиция в рейтинге заполняется лучшими усилиями: профиль не
	// ломается из-за недоступного кеша.
	if h.leaderboard != nil {
		if rank, err := h.leaderboard.Rank(ctx, r.ID); err == nil {
			result.Rank = rank
		}
	}

	return result, nil
}
