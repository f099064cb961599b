// Package proposal содержит доменную модель предложения исследования.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package proposal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Stage определяет фазу жизненного цикла предложения.
// Фаза движется только вперёд и никогда не откатывается.
type Stage string

const (
	// StageDraft - предложение создано, финансирование не достигло цели.
	StageDraft Stage = "draft"
	// StageFunding - накопленное финансирование достигло цели.
	StageFunding Stage = "funding"
	// StageInProgress - исследование идёт (внешний триггер).
	StageInProgress Stage = "in-progress"
	// StageCompleted - исследование завершено (внешний триггер).
	StageCompleted Stage = "completed"
)

// stageOrder задаёт линейный порядок фаз для проверки прогресса.
var stageOrder = map[Stage]int{
	StageDraft:      0,
	StageFunding:    1,
	StageInProgress: 2,
	StageCompleted:  3,
}

// IsValid проверяет, что фаза корректна.
func (s Stage) IsValid() bool {
	_, ok := stageOrder[s]
	return ok
}

// CanAdvanceTo проверяет, что переход строго вперёд по порядку фаз.
func (s Stage) CanAdvanceTo(next Stage) bool {
	cur, okCur := stageOrder[s]
	nxt, okNxt := stageOrder[next]
	return okCur && okNxt && nxt > cur
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PROPOSAL
// ══════════════════════════════════════════════════════════════════════════════

// Proposal - предложение исследования, принадлежащее зарегистрированному
// исследователю. Списки milestone и review растут монотонно (append-only);
// накопленное финансирование никогда не убывает.
type Proposal struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// ResearcherID - ID исследователя-владельца.
	ResearcherID string

	// Title - название исследования.
	Title string

	// Description - описание исследования.
	Description string

	// Methodology - методология исследования.
	Methodology string

	// Milestones - упорядоченный список ID этапов (append-only).
	Milestones []string

	// FundingTarget - целевая сумма финансирования.
	FundingTarget shared.FundingAmount

	// CurrentFunding - накопленное финансирование. Монотонно не убывает.
	CurrentFunding shared.FundingAmount

	// Stage - текущая фаза жизненного цикла.
	Stage Stage

	// Reviews - упорядоченный список ID рецензий (append-only).
	Reviews []string

	// ContributorPoints - очки, заработанные рецензентами по этому
	// предложению (ведомость вкладов варианта с учётом очков).
	ContributorPoints []ContributorPoints

	// Timeline - время создания предложения.
	Timeline time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ContributorPoints - запись ведомости вкладов: кто и сколько очков
// заработал рецензией по этому предложению.
type ContributorPoints struct {
	// ReviewerID - ID исследователя-рецензента.
	ReviewerID string

	// Points - заработанные очки.
	Points shared.Points
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTitle - пустое название.
	ErrInvalidTitle = errors.New("invalid title: must not be empty")

	// ErrInvalidDescription - пустое описание.
	ErrInvalidDescription = errors.New("invalid description: must not be empty")

	// ErrInvalidMethodology - пустая методология.
	ErrInvalidMethodology = errors.New("invalid methodology: must not be empty")

	// ErrInvalidFundingTarget - цель финансирования не положительна.
	ErrInvalidFundingTarget = errors.New("invalid funding target: must be positive")

	// ErrFundingTooSmall - взнос меньше минимального (100 единиц).
	ErrFundingTooSmall = errors.New("funding amount must be at least 100 units")

	// ErrStageRegression - попытка отката фазы назад.
	ErrStageRegression = errors.New("proposal stage can only advance forward")

	// ErrProposalNotFound - предложение не найдено.
	ErrProposalNotFound = errors.New("proposal not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewProposalParams содержит параметры для создания предложения.
type NewProposalParams struct {
	ID            string
	ResearcherID  string
	Title         string
	Description   string
	Methodology   string
	FundingTarget shared.FundingAmount
}

// NewProposal создаёт новое предложение с валидацией всех полей.
// Предложение начинает жизнь в фазе draft с нулевым финансированием
// и пустыми списками этапов и рецензий.
func NewProposal(params NewProposalParams) (*Proposal, error) {
	if params.ID == "" {
		return nil, errors.New("proposal id is required")
	}

	if params.ResearcherID == "" {
		return nil, errors.New("researcher id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrInvalidDescription
	}

	methodology := strings.TrimSpace(params.Methodology)
	if methodology == "" {
		return nil, ErrInvalidMethodology
	}

	if params.FundingTarget <= 0 {
		return nil, ErrInvalidFundingTarget
	}

	now := time.Now().UTC()

	return &Proposal{
		ID:                params.ID,
		ResearcherID:      params.ResearcherID,
		Title:             title,
		Description:       description,
		Methodology:       methodology,
		Milestones:        []string{},
		FundingTarget:     params.FundingTarget,
		CurrentFunding:    0,
		Stage:             StageDraft,
		Reviews:           []string{},
		ContributorPoints: []ContributorPoints{},
		Timeline:          now,
		UpdatedAt:         now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// AddFunding прибавляет взнос к накопленному финансированию.
// Когда накопление впервые достигает цели, фаза переходит draft→funding.
// Переход односторонний: дальнейшие взносы фазу не меняют.
// Возвращает true, если переход произошёл на этом взносе.
func (p *Proposal) AddFunding(amount shared.FundingAmount) (stageAdvanced bool, err error) {
	if amount < shared.MinFundingContribution {
		return false, ErrFundingTooSmall
	}

	p.CurrentFunding = p.CurrentFunding.Add(amount)
	p.UpdatedAt = time.Now().UTC()

	if p.Stage == StageDraft && p.CurrentFunding >= p.FundingTarget {
		p.Stage = StageFunding
		return true, nil
	}

	return false, nil
}

// IsFullyFunded проверяет, достигнута ли цель финансирования.
func (p *Proposal) IsFullyFunded() bool {
	return p.CurrentFunding >= p.FundingTarget
}

// AdvanceStage переводит предложение в следующую фазу.
// Переходы в in-progress и completed запускаются внешним вызовом,
// не событиями финансирования. Откат назад запрещён.
func (p *Proposal) AdvanceStage(next Stage) error {
	if !next.IsValid() {
		return fmt.Errorf("unknown proposal stage: %s", next)
	}

	if !p.Stage.CanAdvanceTo(next) {
		return ErrStageRegression
	}

	p.Stage = next
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// AttachMilestone дописывает ID этапа в список. Список append-only.
func (p *Proposal) AttachMilestone(milestoneID string) {
	if milestoneID == "" {
		return
	}

	p.Milestones = append(p.Milestones, milestoneID)
	p.UpdatedAt = time.Now().UTC()
}

// AttachReview дописывает ID рецензии и запись ведомости вкладов.
func (p *Proposal) AttachReview(reviewID, reviewerID string, points shared.Points) {
	if reviewID == "" {
		return
	}

	p.Reviews = append(p.Reviews, reviewID)
	if reviewerID != "" && points > 0 {
		p.ContributorPoints = append(p.ContributorPoints, ContributorPoints{
			ReviewerID: reviewerID,
			Points:     points,
		})
	}
	p.UpdatedAt = time.Now().UTC()
}

// HasMilestone проверяет, принадлежит ли этап предложению.
func (p *Proposal) HasMilestone(milestoneID string) bool {
	for _, id := range p.Milestones {
		if id == milestoneID {
			return true
		}
	}
	return false
}

// String возвращает строковое представление для логирования.
func (p *Proposal) String() string {
	return fmt.Sprintf(
		"Proposal{ID: %s, Stage: %s, Funding: %d/%d, Milestones: %d, Reviews: %d}",
		p.ID, p.Stage, p.CurrentFunding, p.FundingTarget, len(p.Milestones), len(p.Reviews),
	)
}

// Clone создаёт глубокую копию предложения.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}

	clone := *p
	clone.Milestones = append([]string{}, p.Milestones...)
	clone.Reviews = append([]string{}, p.Reviews...)
	clone.ContributorPoints = append([]ContributorPoints{}, p.ContributorPoints...)
	return &clone
}
