package researcher

import (
	"time"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// POINT CONSTANTS
// Очки за события вклада. Формула рецензии линейна по оценке:
// 10 * score * 2, то есть от 20 до 200 очков за рецензию.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// PointsProposalCreation - фиксированное начисление за создание предложения.
	PointsProposalCreation shared.Points = 20

	// ReviewBasePoints - базовая ставка очков за рецензию.
	ReviewBasePoints shared.Points = 10

	// ReviewQualityMultiplier - множитель качества рецензии.
	ReviewQualityMultiplier shared.Points = 2
)

// ReviewPoints вычисляет очки за рецензию с оценкой score (1-10).
func ReviewPoints(score int) shared.Points {
	return ReviewBasePoints * shared.Points(score) * ReviewQualityMultiplier
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGES (Значки)
// ══════════════════════════════════════════════════════════════════════════════

// Badge описывает значок из статического каталога.
// Каталог загружается один раз при старте процесса и не мутируется
// пользовательскими действиями.
type Badge struct {
	// ID - уникальный идентификатор значка.
	ID string

	// Name - отображаемое имя.
	Name string

	// Description - описание условия получения.
	Description string

	// PointsThreshold - порог очков, при достижении которого значок выдаётся.
	PointsThreshold shared.Points
}

// Идентификаторы значков каталога по умолчанию.
const (
	BadgeResearchStarter = "research_starter"
	BadgeReviewMaster    = "review_master"
	BadgeFundingChampion = "funding_champion"
)

// DefaultBadgeCatalog возвращает каталог значков по умолчанию.
// Данные статичны: повторная инициализация безопасно перезаписывает
// идентичные записи.
func DefaultBadgeCatalog() []Badge {
	return []Badge{
		{BadgeResearchStarter, "Research Starter", "Earned 20 contribution points", 20},
		{BadgeReviewMaster, "Review Master", "Earned 200 contribution points", 200},
		{BadgeFundingChampion, "Funding Champion", "Earned 500 contribution points", 500},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// BadgeChecker проверяет условия выдачи значков после начисления очков.
type BadgeChecker struct {
	catalog []Badge
}

// NewBadgeChecker создаёт проверщик для указанного каталога.
func NewBadgeChecker(catalog []Badge) *BadgeChecker {
	return &BadgeChecker{catalog: catalog}
}

// CheckNewBadges возвращает значки, порог которых достигнут, но которые
// ещё не выданы. Членство в множестве значков никогда не отзывается.
func (bc *BadgeChecker) CheckNewBadges(r *Researcher) []Badge {
	var unlocked []Badge

	for _, badge := range bc.catalog {
		if r.TotalPoints >= badge.PointsThreshold && !r.HasBadge(badge.ID) {
			unlocked = append(unlocked, badge)
		}
	}

	return unlocked
}

// ══════════════════════════════════════════════════════════════════════════════
// REPUTATION ENGINE
// Агрегирует очки на записи исследователя и выдаёт значки при пересечении
// порогов. Вызывается синхронно из команд при каждом событии вклада.
// ══════════════════════════════════════════════════════════════════════════════

// ContributionKind классифицирует событие вклада.
type ContributionKind string

const (
	// ContributionProposal - создание предложения исследования.
	ContributionProposal ContributionKind = "proposal_created"

	// ContributionReview - отправка рецензии со ставкой.
	ContributionReview ContributionKind = "review_submitted"
)

// ContributionEvent описывает одно событие вклада для движка репутации.
type ContributionEvent struct {
	// Kind - тип вклада.
	Kind ContributionKind

	// ContributionID - ID созданной сущности (предложения или рецензии).
	ContributionID string

	// Points - заработанные очки.
	Points shared.Points

	// OccurredAt - время события.
	OccurredAt time.Time
}

// Engine применяет события вклада к записи исследователя.
type Engine struct {
	checker *BadgeChecker
}

// NewEngine создаёт движок репутации с указанным каталогом значков.
func NewEngine(catalog []Badge) *Engine {
	return &Engine{checker: NewBadgeChecker(catalog)}
}

// Apply начисляет очки события и возвращает выданные значки.
// Порядок фиксирован: сначала очки, затем проверка порогов - значок
// появляется в множестве тогда и только тогда, когда TotalPoints
// когда-либо достигал его порога.
func (e *Engine) Apply(r *Researcher, event ContributionEvent) ([]Badge, error) {
	if err := r.AwardPoints(event.Points, event.ContributionID); err != nil {
		return nil, err
	}

	unlocked := e.checker.CheckNewBadges(r)
	for _, badge := range unlocked {
		r.GrantBadge(badge.ID)
	}

	return unlocked, nil
}
