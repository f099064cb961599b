package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/review"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT REVIEW COMMAND
// Отправляет рецензию со ставкой на предложение. Рецензент зарабатывает
// 10 * score * 2 очков; запись попадает в ведомость вкладов предложения.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitReviewCommand содержит данные рецензии.
type SubmitReviewCommand struct {
	// ProposalID - ID рецензируемого предложения.
	ProposalID string

	// ReviewerID - ID исследователя-рецензента.
	ReviewerID string

	// Score - оценка (1-10).
	Score int

	// Comments - текст рецензии.
	Comments string

	// StakeAmount - ставка рецензента (минимум 100 единиц).
	StakeAmount int64
}

// Validate проверяет оба идентификатора.
func (c SubmitReviewCommand) Validate() error {
	if _, err := shared.NewEntityID(c.ProposalID); err != nil {
		return err
	}
	if _, err := shared.NewEntityID(c.ReviewerID); err != nil {
		return err
	}
	return nil
}

// SubmitReviewResult содержит результат отправки рецензии.
type SubmitReviewResult struct {
	// ReviewID - ID созданной рецензии.
	ReviewID string

	// PointsEarned - очки, заработанные рецензией.
	PointsEarned shared.Points

	// TotalPoints - очки рецензента после начисления.
	TotalPoints shared.Points

	// BadgesUnlocked - значки, выданные этим начислением.
	BadgesUnlocked []researcher.Badge
}

// SubmitReviewConfig содержит настройки обработчика.
type SubmitReviewConfig struct {
	// AwardPoints включает начисление очков за рецензии. Выключенный
	// флаг даёт вариант без учёта очков: PointsEarned остаётся нулём.
	AwardPoints bool
}

// SubmitReviewHandler обрабатывает команду отправки рецензии.
type SubmitReviewHandler struct {
	reviewRepo     review.Repository
	proposalRepo   proposal.Repository
	researcherRepo researcher.Repository
	engine         *researcher.Engine
	eventPublisher shared.EventPublisher
	config         SubmitReviewConfig
}

// NewSubmitReviewHandler создаёт обработчик.
func NewSubmitReviewHandler(
	reviewRepo review.Repository,
	proposalRepo proposal.Repository,
	researcherRepo researcher.Repository,
	engine *researcher.Engine,
	eventPublisher shared.EventPublisher,
	config SubmitReviewConfig,
) *SubmitReviewHandler {
	return &SubmitReviewHandler{
		reviewRepo:     reviewRepo,
		proposalRepo:   proposalRepo,
		researcherRepo: researcherRepo,
		engine:         engine,
		eventPublisher: eventPublisher,
		config:         config,
	}
}

// Handle выполняет отправку рецензии.
func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*SubmitReviewResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.proposalRepo.GetByID(ctx, cmd.ProposalID)
	if err != nil {
		if err == proposal.ErrProposalNotFound {
			return nil, shared.ErrProposalNotFound
		}
		return nil, shared.WrapError("review", "Submit", shared.ErrInternal, "failed to load proposal", err)
	}

	reviewer, err := h.researcherRepo.GetByID(ctx, cmd.ReviewerID)
	if err != nil {
		if err == researcher.ErrResearcherNotFound {
			return nil, shared.ErrResearcherNotFound
		}
		return nil, shared.WrapError("review", "Submit", shared.ErrInternal, "failed to load reviewer", err)
	}

	var pointsFn func(score int) shared.Points
	if h.config.AwardPoints {
		pointsFn = researcher.ReviewPoints
	}

	rev, err := review.NewReview(review.NewReviewParams{
		ID:          uuid.NewString(),
		ProposalID:  p.ID,
		ReviewerID:  reviewer.ID,
		Score:       cmd.Score,
		Comments:    cmd.Comments,
		StakeAmount: shared.FundingAmount(cmd.StakeAmount),
		PointsFn:    pointsFn,
	})
	if err != nil {
		if err == review.ErrInvalidScore {
			return nil, shared.ErrScoreOutOfRange
		}
		if err == review.ErrStakeTooSmall {
			return nil, shared.ErrStakeBelowMinimum
		}
		return nil, err
	}

	if err := h.reviewRepo.Create(ctx, rev); err != nil {
		return nil, shared.WrapError("review", "Submit", shared.ErrInternal, "failed to persist review", err)
	}

	p.AttachReview(rev.ID, reviewer.ID, rev.PointsEarned)
	if err := h.proposalRepo.Update(ctx, p); err != nil {
		return nil, shared.WrapError("review", "Submit", shared.ErrInternal, "failed to attach review", err)
	}

	var unlocked []researcher.Badge
	if rev.PointsEarned > 0 {
		contribution := researcher.ContributionEvent{
			Kind:           researcher.ContributionReview,
			ContributionID: rev.ID,
			Points:         rev.PointsEarned,
			OccurredAt:     time.Now().UTC(),
		}

		unlocked, err = h.engine.Apply(reviewer, contribution)
		if err != nil {
			return nil, shared.WrapError("review", "Submit", shared.ErrInternal, "failed to award points", err)
		}

		if err := h.researcherRepo.Update(ctx, reviewer); err != nil {
			return nil, shared.WrapError("review", "Submit", shared.ErrInternal, "failed to persist reviewer points", err)
		}

		if h.eventPublisher != nil {
			_ = h.eventPublisher.Publish(researcher.NewPointsAwardedEvent(reviewer, contribution))
			for _, badge := range unlocked {
				_ = h.eventPublisher.Publish(researcher.NewBadgeUnlockedEvent(reviewer, badge))
			}
		}
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(review.NewSubmittedEvent(rev))
	}

	return &SubmitReviewResult{
		ReviewID:       rev.ID,
		PointsEarned:   rev.PointsEarned,
		TotalPoints:    reviewer.TotalPoints,
		BadgesUnlocked: unlocked,
	}, nil
}
