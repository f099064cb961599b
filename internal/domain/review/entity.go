// Package review содержит доменную модель рецензии со ставкой.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: REVIEW
// ══════════════════════════════════════════════════════════════════════════════

// Review - рецензия на предложение, подкреплённая ставкой.
// Ставка - барьер от спама; в этом ядре она не возвращается и не
// сжигается. Запись неизменяема после создания, кроме флага Verified.
type Review struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// ProposalID - ID рецензируемого предложения.
	ProposalID string

	// ReviewerID - ID исследователя-рецензента.
	ReviewerID string

	// Score - оценка предложения (1-10).
	Score int

	// Comments - текст рецензии.
	Comments string

	// StakeAmount - ставка рецензента (минимум 100 единиц).
	StakeAmount shared.FundingAmount

	// Verified - флаг верификации рецензии.
	Verified bool

	// PointsEarned - очки, заработанные рецензией: 10 * score * 2.
	PointsEarned shared.Points

	// SubmittedAt - время отправки.
	SubmittedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidScore - оценка вне диапазона 1-10.
	ErrInvalidScore = errors.New("score must be between 1 and 10")

	// ErrStakeTooSmall - ставка меньше минимальной (100 единиц).
	ErrStakeTooSmall = errors.New("stake amount must be at least 100 units")

	// ErrReviewNotFound - рецензия не найдена.
	ErrReviewNotFound = errors.New("review not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewReviewParams содержит параметры для создания рецензии.
type NewReviewParams struct {
	ID          string
	ProposalID  string
	ReviewerID  string
	Score       int
	Comments    string
	StakeAmount shared.FundingAmount
	// PointsFn вычисляет очки за рецензию. Nil означает вариант без
	// учёта очков: PointsEarned остаётся нулём.
	PointsFn func(score int) shared.Points
}

// NewReview создаёт рецензию с валидацией оценки и ставки.
// Очки вычисляются при создании и больше не пересчитываются.
func NewReview(params NewReviewParams) (*Review, error) {
	if params.ID == "" {
		return nil, errors.New("review id is required")
	}

	if params.ProposalID == "" {
		return nil, errors.New("proposal id is required")
	}

	if params.Score < 1 || params.Score > 10 {
		return nil, ErrInvalidScore
	}

	if params.StakeAmount < shared.MinReviewStake {
		return nil, ErrStakeTooSmall
	}

	var points shared.Points
	if params.PointsFn != nil {
		points = params.PointsFn(params.Score)
	}

	return &Review{
		ID:           params.ID,
		ProposalID:   params.ProposalID,
		ReviewerID:   params.ReviewerID,
		Score:        params.Score,
		Comments:     strings.TrimSpace(params.Comments),
		StakeAmount:  params.StakeAmount,
		Verified:     false,
		PointsEarned: points,
		SubmittedAt:  time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// MarkVerified устанавливает флаг верификации. Единственная мутация,
// разрешённая после создания.
func (r *Review) MarkVerified() {
	r.Verified = true
}

// String возвращает строковое представление для логирования.
func (r *Review) String() string {
	return fmt.Sprintf(
		"Review{ID: %s, Proposal: %s, Score: %d, Stake: %d, Points: %d}",
		r.ID, r.ProposalID, r.Score, r.StakeAmount, r.PointsEarned,
	)
}

// Clone создаёт копию рецензии.
func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}

	clone := *r
	return &clone
}
