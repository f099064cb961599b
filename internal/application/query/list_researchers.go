package query

import (
	"context"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST RESEARCHERS QUERY
// Возвращает всех зарегистрированных исследователей. Пустой реестр - это
// NotFound, а не пустой успех: семантика исходной системы сохранена.
// ══════════════════════════════════════════════════════════════════════════════

// GetAllResearchersQuery содержит параметры запроса списка.
type GetAllResearchersQuery struct {
	// Limit - максимум записей (0 = без ограничения).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет параметры пагинации.
func (q GetAllResearchersQuery) Validate() error {
	if q.Limit < 0 || q.Offset < 0 {
		return shared.NewDomainError("researcher", "List", shared.ErrValueOutOfRange, "limit and offset must be non-negative")
	}
	return nil
}

// GetAllResearchersResult содержит результат запроса списка.
type GetAllResearchersResult struct {
	// Researchers - записи исследователей.
	Researchers []ResearcherDTO `json:"researchers"`

	// TotalCount - общее количество исследователей в реестре.
	TotalCount int `json:"total_count"`
}

// GetAllResearchersHandler обрабатывает запрос списка исследователей.
type GetAllResearchersHandler struct {
	researcherRepo researcher.Repository
}

// NewGetAllResearchersHandler создаёт обработчик.
func NewGetAllResearchersHandler(researcherRepo researcher.Repository) *GetAllResearchersHandler {
	return &GetAllResearchersHandler{researcherRepo: researcherRepo}
}

// Handle выполняет запрос списка.
func (h *GetAllResearchersHandler) Handle(ctx context.Context, q GetAllResearchersQuery) (*GetAllResearchersResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	researchers, err := h.researcherRepo.GetAll(ctx)
	if err != nil {
		return nil, shared.WrapError("researcher", "List", shared.ErrInternal, "failed to list researchers", err)
	}

	if len(researchers) == 0 {
		return nil, shared.ErrNoResearchers
	}

	total := len(researchers)
	researchers = paginateResearchers(researchers, q.Offset, q.Limit)

	dtos := make([]ResearcherDTO, len(researchers))
	for i, r := range researchers {
		dtos[i] = ToResearcherDTO(r)
	}

	return &GetAllResearchersResult{
		Researchers: dtos,
		TotalCount:  total,
	}, nil
}

// paginateResearchers применяет пагинацию к срезу.
func paginateResearchers(rs []*researcher.Researcher, offset, limit int) []*researcher.Researcher {
	if offset >= len(rs) {
		return []*researcher.Researcher{}
	}

	rs = rs[offset:]
	if limit > 0 && limit < len(rs) {
		rs = rs[:limit]
	}
	return rs
}
