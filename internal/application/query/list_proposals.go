package query

import (
	"context"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST PROPOSALS QUERIES
// Список всех предложений и предложений одного исследователя. Пустой
// результат в обоих случаях - это NotFound, не пустой успех: семантика
// исходной системы сохранена на уровне запросов, хранилища возвращают
// пустые срезы.
// ══════════════════════════════════════════════════════════════════════════════

// GetAllProposalsQuery содержит параметры запроса списка предложений.
type GetAllProposalsQuery struct {
	// Stage - фильтр по фазе (пустая строка = все фазы).
	Stage string
}

// Validate проверяет фильтр фазы.
func (q GetAllProposalsQuery) Validate() error {
	if q.Stage != "" && !proposal.Stage(q.Stage).IsValid() {
		return shared.NewDomainError("proposal", "List", shared.ErrInvalidPayload, "unknown proposal stage: "+q.Stage)
	}
	return nil
}

// GetAllProposalsResult содержит результат запроса списка.
type GetAllProposalsResult struct {
	// Proposals - записи предложений.
	Proposals []ProposalDTO `json:"proposals"`

	// TotalCount - количество записей после фильтрации.
	TotalCount int `json:"total_count"`
}

// GetAllProposalsHandler обрабатывает запрос списка предложений.
type GetAllProposalsHandler struct {
	proposalRepo proposal.Repository
}

// NewGetAllProposalsHandler создаёт обработчик.
func NewGetAllProposalsHandler(proposalRepo proposal.Repository) *GetAllProposalsHandler {
	return &GetAllProposalsHandler{proposalRepo: proposalRepo}
}

// Handle выполняет запрос списка предложений.
func (h *GetAllProposalsHandler) Handle(ctx context.Context, q GetAllProposalsQuery) (*GetAllProposalsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	proposals, err := h.proposalRepo.GetAll(ctx)
	if err != nil {
		return nil, shared.WrapError("proposal", "List", shared.ErrInternal, "failed to list proposals", err)
	}

	if q.Stage != "" {
		proposals = filterByStage(proposals, proposal.Stage(q.Stage))
	}

	if len(proposals) == 0 {
		return nil, shared.ErrNoProposals
	}

	dtos := make([]ProposalDTO, len(proposals))
	for i, p := range proposals {
		dtos[i] = ToProposalDTO(p)
	}

	return &GetAllProposalsResult{
		Proposals:  dtos,
		TotalCount: len(dtos),
	}, nil
}

// filterByStage оставляет предложения в указанной фазе.
func filterByStage(proposals []*proposal.Proposal, stage proposal.Stage) []*proposal.Proposal {
	filtered := make([]*proposal.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if p.Stage == stage {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// ══════════════════════════════════════════════════════════════════════════════
// PROPOSALS BY RESEARCHER
// ══════════════════════════════════════════════════════════════════════════════

// GetProposalsByResearcherQuery содержит параметры запроса по исследователю.
type GetProposalsByResearcherQuery struct {
	// ResearcherID - ID исследователя-владельца.
	ResearcherID string
}

// Validate проверяет идентификатор.
func (q GetProposalsByResearcherQuery) Validate() error {
	_, err := shared.NewEntityID(q.ResearcherID)
	return err
}

// GetProposalsByResearcherHandler обрабатывает запрос предложений исследователя.
type GetProposalsByResearcherHandler struct {
	proposalRepo proposal.Repository
}

// NewGetProposalsByResearcherHandler создаёт обработчик.
func NewGetProposalsByResearcherHandler(proposalRepo proposal.Repository) *GetProposalsByResearcherHandler {
	return &GetProposalsByResearcherHandler{proposalRepo: proposalRepo}
}

// Handle выполняет запрос предложений исследователя.
func (h *GetProposalsByResearcherHandler) Handle(ctx context.Context, q GetProposalsByResearcherQuery) (*GetAllProposalsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	proposals, err := h.proposalRepo.GetByResearcherID(ctx, q.ResearcherID)
	if err != nil {
		return nil, shared.WrapError("proposal", "List", shared.ErrInternal, "failed to list proposals", err)
	}

	// Исследователь без предложений и несуществующий исследователь
	// неразличимы: оба дают NotFound.
	if len(proposals) == 0 {
		return nil, shared.ErrNoProposals
	}

	dtos := make([]ProposalDTO, len(proposals))
	for i, p := range proposals {
		dtos[i] = ToProposalDTO(p)
	}

	return &GetAllProposalsResult{
		Proposals:  dtos,
		TotalCount: len(dtos),
	}, nil
}
