package query

import (
	"context"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Рейтинг исследователей по очкам. Обслуживается из Redis; при недоступном
// или пустом кеше рейтинг строится напрямую из долговечного хранилища и
// кеш перестраивается в фоне лучших усилий.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса рейтинга.
type GetLeaderboardQuery struct {
	// Limit - количество записей (по умолчанию 20, максимум 100).
	Limit int
}

// Validate нормализует и проверяет лимит.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return shared.NewDomainError("leaderboard", "Top", shared.ErrValueOutOfRange, "limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// LeaderboardEntryDTO - одна запись рейтинга для ответа.
type LeaderboardEntryDTO struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`

	// ResearcherID - внутренний ID исследователя.
	ResearcherID string `json:"researcher_id"`

	// Name - отображаемое имя.
	Name string `json:"name"`

	// TotalPoints - накопленные очки.
	TotalPoints int64 `json:"total_points"`

	// Badges - количество значков.
	Badges int `json:"badges"`
}

// GetLeaderboardResult содержит результат запроса рейтинга.
type GetLeaderboardResult struct {
	// Entries - записи рейтинга.
	Entries []LeaderboardEntryDTO `json:"entries"`

	// FromCache - обслужен ли запрос из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler обрабатывает запрос рейтинга.
type GetLeaderboardHandler struct {
	leaderboard    researcher.Leaderboard
	researcherRepo researcher.Repository
}

// NewGetLeaderboardHandler создаёт обработчик. Leaderboard может быть nil -
// тогда рейтинг всегда строится из хранилища.
func NewGetLeaderboardHandler(
	leaderboard researcher.Leaderboard,
	researcherRepo researcher.Repository,
) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		leaderboard:    leaderboard,
		researcherRepo: researcherRepo,
	}
}

// Handle выполняет запрос рейтинга.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.leaderboard != nil {
		entries, err := h.leaderboard.Top(ctx, q.Limit)
		if err == nil && len(entries) > 0 {
			return &GetLeaderboardResult{
				Entries:     toLeaderboardDTOs(entries),
				FromCache:   true,
				GeneratedAt: time.Now().UTC(),
			}, nil
		}
	}

	return h.handleFromStore(ctx, q)
}

// handleFromStore строит рейтинг напрямую из долговечного хранилища.
// GetAll возвращает записи в порядке убывания очков.
func (h *GetLeaderboardHandler) handleFromStore(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	researchers, err := h.researcherRepo.GetAll(ctx)
	if err != nil {
		return nil, shared.WrapError("leaderboard", "Top", shared.ErrInternal, "failed to load researchers", err)
	}

	if h.leaderboard != nil && len(researchers) > 0 {
		// Тёплый кеш для следующих запросов; отказ не критичен.
		_ = h.leaderboard.Rebuild(ctx, researchers)
	}

	if len(researchers) > q.Limit {
		researchers = researchers[:q.Limit]
	}

	entries := make([]LeaderboardEntryDTO, len(researchers))
	for i, r := range researchers {
		entries[i] = LeaderboardEntryDTO{
			Rank:         i + 1,
			ResearcherID: r.ID,
			Name:         r.Name.String(),
			TotalPoints:  r.TotalPoints.Int64(),
			Badges:       len(r.Badges),
		}
	}

	return &GetLeaderboardResult{
		Entries:     entries,
		FromCache:   false,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// toLeaderboardDTOs конвертирует доменные записи рейтинга в DTO.
func toLeaderboardDTOs(entries []researcher.LeaderboardEntry) []LeaderboardEntryDTO {
	dtos := make([]LeaderboardEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LeaderboardEntryDTO{
			Rank:         e.Rank,
			ResearcherID: e.ResearcherID,
			Name:         e.Name,
			TotalPoints:  e.TotalPoints.Int64(),
			Badges:       e.Badges,
		}
	}
	return dtos
}

// ══════════════════════════════════════════════════════════════════════════════
// RESEARCHER RANK
// ══════════════════════════════════════════════════════════════════════════════

// GetResearcherRankQuery содержит параметры запроса позиции.
type GetResearcherRankQuery struct {
	// ResearcherID - внутренний ID исследователя.
	ResearcherID string
}

// Validate проверяет идентификатор.
func (q GetResearcherRankQuery) Validate() error {
	_, err := shared.NewEntityID(q.ResearcherID)
	return err
}

// GetResearcherRankResult содержит позицию исследователя.
type GetResearcherRankResult struct {
	// ResearcherID - внутренний ID исследователя.
	ResearcherID string `json:"researcher_id"`

	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`
}

// ══════════════════════════════════════════════════════════════════════════════
// NEIGHBOR WINDOW
// Срез рейтинга вокруг исследователя: соседи выше и ниже его позиции.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardNeighborsQuery содержит параметры запроса соседей.
type GetLeaderboardNeighborsQuery struct {
	// ResearcherID - внутренний ID исследователя.
	ResearcherID string

	// Radius - количество соседей с каждой стороны (по умолчанию 2, максимум 10).
	Radius int
}

// Validate нормализует и проверяет параметры.
func (q *GetLeaderboardNeighborsQuery) Validate() error {
	if _, err := shared.NewEntityID(q.ResearcherID); err != nil {
		return err
	}
	if q.Radius < 0 {
		return shared.NewDomainError("leaderboard", "Around", shared.ErrValueOutOfRange, "radius cannot be negative")
	}
	if q.Radius == 0 {
		q.Radius = 2
	}
	if q.Radius > 10 {
		q.Radius = 10
	}
	return nil
}

// GetLeaderboardNeighborsResult содержит окно рейтинга вокруг исследователя.
type GetLeaderboardNeighborsResult struct {
	// ResearcherID - центр окна.
	ResearcherID string `json:"researcher_id"`

	// Entries - записи окна в порядке убывания очков.
	Entries []LeaderboardEntryDTO `json:"entries"`

	// FromCache - обслужен ли запрос из кеша.
	FromCache bool `json:"from_cache"`
}

// HandleNeighbors возвращает окно рейтинга вокруг исследователя.
// Исследователь вне рейтинга даёт NotFound.
func (h *GetLeaderboardHandler) HandleNeighbors(ctx context.Context, q GetLeaderboardNeighborsQuery) (*GetLeaderboardNeighborsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.leaderboard != nil {
		if entries, err := h.leaderboard.Around(ctx, q.ResearcherID, q.Radius); err == nil {
			return &GetLeaderboardNeighborsResult{
				ResearcherID: q.ResearcherID,
				Entries:      toLeaderboardDTOs(entries),
				FromCache:    true,
			}, nil
		}
	}

	// Вычисление из хранилища: окно строится по points-упорядоченному списку.
	researchers, err := h.researcherRepo.GetAll(ctx)
	if err != nil {
		return nil, shared.WrapError("leaderboard", "Around", shared.ErrInternal, "failed to load researchers", err)
	}

	pos := -1
	for i, r := range researchers {
		if r.ID == q.ResearcherID {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, shared.ErrResearcherNotFound
	}

	start := pos - q.Radius
	if start < 0 {
		start = 0
	}
	end := pos + q.Radius + 1
	if end > len(researchers) {
		end = len(researchers)
	}

	entries := make([]LeaderboardEntryDTO, 0, end-start)
	for i := start; i < end; i++ {
		r := researchers[i]
		entries = append(entries, LeaderboardEntryDTO{
			Rank:         i + 1,
			ResearcherID: r.ID,
			Name:         r.Name.String(),
			TotalPoints:  r.TotalPoints.Int64(),
			Badges:       len(r.Badges),
		})
	}

	return &GetLeaderboardNeighborsResult{
		ResearcherID: q.ResearcherID,
		Entries:      entries,
		FromCache:    false,
	}, nil
}

// HandleRank возвращает позицию исследователя в рейтинге.
// Исследователь вне рейтинга даёт NotFound.
func (h *GetLeaderboardHandler) HandleRank(ctx context.Context, q GetResearcherRankQuery) (*GetResearcherRankResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.leaderboard != nil {
		if rank, err := h.leaderboard.Rank(ctx, q.ResearcherID); err == nil {
			return &GetResearcherRankResult{ResearcherID: q.ResearcherID, Rank: rank}, nil
		}
	}

	// Вычисление из хранилища: позиция = индекс в points-упорядоченном списке.
	researchers, err := h.researcherRepo.GetAll(ctx)
	if err != nil {
		return nil, shared.WrapError("leaderboard", "Rank", shared.ErrInternal, "failed to load researchers", err)
	}

	for i, r := range researchers {
		if r.ID == q.ResearcherID {
			return &GetResearcherRankResult{ResearcherID: q.ResearcherID, Rank: i + 1}, nil
		}
	}

	return nil, shared.ErrResearcherNotFound
}
