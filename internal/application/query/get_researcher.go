// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RESEARCHER QUERIES
// Получение исследователя по ID и по принципалу вызывающего.
// Чтение по ID идёт через кеш (read-through), когда кеш подключён.
// ══════════════════════════════════════════════════════════════════════════════

// ResearcherDTO - представление исследователя для ответа.
type ResearcherDTO struct {
	// ID - внутренний идентификатор.
	ID string `json:"id"`

	// Name - имя исследователя.
	Name string `json:"name"`

	// Address - почтовый адрес.
	Address string `json:"address"`

	// Email - нормализованный email.
	Email string `json:"email"`

	// Phone - нормализованный телефон.
	Phone string `json:"phone"`

	// ReputationScore - производный показатель репутации.
	ReputationScore int `json:"reputation_score"`

	// TotalPoints - накопленные очки вклада.
	TotalPoints int64 `json:"total_points"`

	// Badges - полученные значки.
	Badges []string `json:"badges"`

	// Contributions - ID учтённых вкладов.
	Contributions []string `json:"contributions"`

	// Achievements - текстовые отметки достижений.
	Achievements []string `json:"achievements"`

	// CreatedAt - время регистрации.
	CreatedAt time.Time `json:"created_at"`
}

// ToResearcherDTO конвертирует доменную сущность в DTO.
// Хеш API-ключа наружу не отдаётся.
func ToResearcherDTO(r *researcher.Researcher) ResearcherDTO {
	return ResearcherDTO{
		ID:              r.ID,
		Name:            r.Name.String(),
		Address:         r.Address.String(),
		Email:           r.Email.String(),
		Phone:           r.Phone.String(),
		ReputationScore: r.ReputationScore,
		TotalPoints:     r.TotalPoints.Int64(),
		Badges:          r.Badges,
		Contributions:   r.Contributions,
		Achievements:    r.Achievements,
		CreatedAt:       r.CreatedAt,
	}
}

// GetResearcherByIDQuery содержит параметры запроса по ID.
type GetResearcherByIDQuery struct {
	// ResearcherID - внутренний ID исследователя.
	ResearcherID string
}

// Validate проверяет идентификатор.
func (q GetResearcherByIDQuery) Validate() error {
	_, err := shared.NewEntityID(q.ResearcherID)
	return err
}

// GetResearcherByOwnerQuery содержит параметры запроса по принципалу.
type GetResearcherByOwnerQuery struct {
	// Owner - принципал вызывающего.
	Owner shared.Principal
}

// Validate проверяет принципал.
func (q GetResearcherByOwnerQuery) Validate() error {
	if !q.Owner.IsValid() {
		return shared.NewDomainError("researcher", "FindByOwner", shared.ErrEmptyValue, "owner principal is required")
	}
	return nil
}

// GetResearcherHandler обрабатывает запросы профиля исследователя.
type GetResearcherHandler struct {
	researcherRepo researcher.Repository
	cache          researcher.Cache
}

// NewGetResearcherHandler создаёт обработчик. Cache может быть nil.
func NewGetResearcherHandler(researcherRepo researcher.Repository, cache researcher.Cache) *GetResearcherHandler {
	return &GetResearcherHandler{
		researcherRepo: researcherRepo,
		cache:          cache,
	}
}

// HandleByID возвращает исследователя по внутреннему ID.
func (h *GetResearcherHandler) HandleByID(ctx context.Context, q GetResearcherByIDQuery) (*ResearcherDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, q.ResearcherID); err == nil {
			dto := ToResearcherDTO(cached)
			return &dto, nil
		}
	}

	r, err := h.researcherRepo.GetByID(ctx, q.ResearcherID)
	if err != nil {
		if err == researcher.ErrResearcherNotFound {
			return nil, shared.ErrResearcherNotFound
		}
		return nil, shared.WrapError("researcher", "Find", shared.ErrInternal, "failed to load researcher", err)
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, r, 0)
	}

	dto := ToResearcherDTO(r)
	return &dto, nil
}

// HandleByOwner возвращает исследователя по принципалу владельца.
func (h *GetResearcherHandler) HandleByOwner(ctx context.Context, q GetResearcherByOwnerQuery) (*ResearcherDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	r, err := h.researcherRepo.GetByOwner(ctx, q.Owner)
	if err != nil {
		if err == researcher.ErrResearcherNotFound {
			return nil, shared.ErrOwnerHasNoResearcher
		}
		return nil, shared.WrapError("researcher", "FindByOwner", shared.ErrInternal, "failed to load researcher", err)
	}

	dto := ToResearcherDTO(r)
	return &dto, nil
}
