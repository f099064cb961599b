package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

func reviewPoints(score int) shared.Points {
	return shared.Points(10 * score * 2)
}

func validReviewParams() NewReviewParams {
	return NewReviewParams{
		ID:          "rev-1",
		ProposalID:  "prop-1",
		ReviewerID:  "res-2",
		Score:       9,
		Comments:    "  Methodology is sound, sample size could be larger.  ",
		StakeAmount: 150,
		PointsFn:    reviewPoints,
	}
}

func TestNewReview_ComputesPointsAtCreation(t *testing.T) {
	r, err := NewReview(validReviewParams())
	assert.NoError(t, err)

	assert.Equal(t, shared.Points(180), r.PointsEarned)
	assert.Equal(t, "Methodology is sound, sample size could be larger.", r.Comments)
	assert.False(t, r.Verified)
}

func TestNewReview_NilPointsFnMeansZeroPoints(t *testing.T) {
	params := validReviewParams()
	params.PointsFn = nil

	r, err := NewReview(params)
	assert.NoError(t, err)
	assert.Equal(t, shared.Points(0), r.PointsEarned)
}

func TestNewReview_ScoreBounds(t *testing.T) {
	for _, score := range []int{0, -3, 11} {
		params := validReviewParams()
		params.Score = score

		_, err := NewReview(params)
		assert.ErrorIs(t, err, ErrInvalidScore, "score %d", score)
	}

	for _, score := range []int{1, 10} {
		params := validReviewParams()
		params.Score = score

		r, err := NewReview(params)
		assert.NoError(t, err)
		assert.Equal(t, reviewPoints(score), r.PointsEarned)
	}
}

func TestNewReview_StakeMinimum(t *testing.T) {
	params := validReviewParams()
	params.StakeAmount = 99

	_, err := NewReview(params)
	assert.ErrorIs(t, err, ErrStakeTooSmall)

	params.StakeAmount = shared.MinReviewStake
	_, err = NewReview(params)
	assert.NoError(t, err)
}

func TestMarkVerified(t *testing.T) {
	r, err := NewReview(validReviewParams())
	assert.NoError(t, err)

	r.MarkVerified()
	assert.True(t, r.Verified)
}
