package researcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

func TestReviewPoints_LinearInScore(t *testing.T) {
	assert.Equal(t, shared.Points(20), ReviewPoints(1))
	assert.Equal(t, shared.Points(180), ReviewPoints(9))
	assert.Equal(t, shared.Points(200), ReviewPoints(10))
}

func TestEngine_AwardsBadgeOnThreshold(t *testing.T) {
	engine := NewEngine(DefaultBadgeCatalog())

	r, err := NewResearcher(validParams())
	assert.NoError(t, err)

	unlocked, err := engine.Apply(r, ContributionEvent{
		Kind:           ContributionProposal,
		ContributionID: "prop-1",
		Points:         PointsProposalCreation,
		OccurredAt:     time.Now().UTC(),
	})
	assert.NoError(t, err)

	// 20 очков пересекает порог research_starter.
	assert.Len(t, unlocked, 1)
	assert.Equal(t, BadgeResearchStarter, unlocked[0].ID)
	assert.True(t, r.HasBadge(BadgeResearchStarter))
}

func TestEngine_BadgeNotDuplicated(t *testing.T) {
	engine := NewEngine(DefaultBadgeCatalog())

	r, err := NewResearcher(validParams())
	assert.NoError(t, err)

	_, err = engine.Apply(r, ContributionEvent{
		Kind: ContributionProposal, ContributionID: "prop-1", Points: PointsProposalCreation,
	})
	assert.NoError(t, err)

	unlocked, err := engine.Apply(r, ContributionEvent{
		Kind: ContributionProposal, ContributionID: "prop-2", Points: PointsProposalCreation,
	})
	assert.NoError(t, err)

	assert.Empty(t, unlocked)
	assert.Equal(t, []string{BadgeResearchStarter}, r.Badges)
	assert.Equal(t, shared.Points(40), r.TotalPoints)
}

func TestEngine_CrossesMultipleThresholds(t *testing.T) {
	engine := NewEngine(DefaultBadgeCatalog())

	r, err := NewResearcher(validParams())
	assert.NoError(t, err)

	// Одно крупное начисление пересекает сразу два порога.
	unlocked, err := engine.Apply(r, ContributionEvent{
		Kind: ContributionReview, ContributionID: "rev-1", Points: 250,
	})
	assert.NoError(t, err)

	assert.Len(t, unlocked, 2)
	assert.True(t, r.HasBadge(BadgeResearchStarter))
	assert.True(t, r.HasBadge(BadgeReviewMaster))
	assert.False(t, r.HasBadge(BadgeFundingChampion))
}

func TestEngine_BadgesPersistAcrossFurtherEvents(t *testing.T) {
	engine := NewEngine(DefaultBadgeCatalog())

	r, err := NewResearcher(validParams())
	assert.NoError(t, err)

	_, err = engine.Apply(r, ContributionEvent{
		Kind: ContributionReview, ContributionID: "rev-1", Points: 600,
	})
	assert.NoError(t, err)
	assert.Len(t, r.Badges, 3)

	_, err = engine.Apply(r, ContributionEvent{
		Kind: ContributionProposal, ContributionID: "prop-1", Points: PointsProposalCreation,
	})
	assert.NoError(t, err)

	// Значки не отзываются и не дублируются.
	assert.Len(t, r.Badges, 3)
}

func TestDefaultBadgeCatalog_Thresholds(t *testing.T) {
	catalog := DefaultBadgeCatalog()
	assert.Len(t, catalog, 3)

	byID := make(map[string]Badge)
	for _, b := range catalog {
		byID[b.ID] = b
	}

	assert.Equal(t, shared.Points(20), byID[BadgeResearchStarter].PointsThreshold)
	assert.Equal(t, shared.Points(200), byID[BadgeReviewMaster].PointsThreshold)
	assert.Equal(t, shared.Points(500), byID[BadgeFundingChampion].PointsThreshold)
}
