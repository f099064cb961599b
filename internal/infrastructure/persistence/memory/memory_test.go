package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/review"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

func newTestResearcher(t *testing.T, id, email, phone string) *researcher.Researcher {
	t.Helper()

	r, err := researcher.NewResearcher(researcher.NewResearcherParams{
		ID:      id,
		Owner:   shared.Principal("owner-" + id),
		Name:    "Researcher " + id,
		Address: "1 Science Street",
		Email:   email,
		Phone:   phone,
	})
	assert.NoError(t, err)
	return r
}

func TestResearcherStore_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewResearcherStore()

	r := newTestResearcher(t, "res-1", "a@example.com", "77010000001")
	assert.NoError(t, store.Create(ctx, r))

	byID, err := store.GetByID(ctx, "res-1")
	assert.NoError(t, err)
	assert.Equal(t, r.Email, byID.Email)

	byOwner, err := store.GetByOwner(ctx, r.Owner)
	assert.NoError(t, err)
	assert.Equal(t, "res-1", byOwner.ID)

	byEmail, err := store.GetByEmail(ctx, r.Email)
	assert.NoError(t, err)
	assert.Equal(t, "res-1", byEmail.ID)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, researcher.ErrResearcherNotFound)
}

func TestResearcherStore_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewResearcherStore()

	assert.NoError(t, store.Create(ctx, newTestResearcher(t, "res-1", "a@example.com", "77010000001")))

	dupEmail := newTestResearcher(t, "res-2", "a@example.com", "77010000002")
	assert.ErrorIs(t, store.Create(ctx, dupEmail), researcher.ErrResearcherAlreadyExists)

	dupPhone := newTestResearcher(t, "res-3", "b@example.com", "77010000001")
	assert.ErrorIs(t, store.Create(ctx, dupPhone), researcher.ErrResearcherAlreadyExists)

	exists, err := store.ExistsByEmail(ctx, shared.Email("a@example.com"))
	assert.NoError(t, err)
	assert.True(t, exists)

	count, err := store.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResearcherStore_UpdateIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewResearcherStore()

	r := newTestResearcher(t, "res-1", "a@example.com", "77010000001")
	assert.NoError(t, store.Create(ctx, r))

	// Mutating the original after Create must not leak into the store.
	assert.NoError(t, r.AwardPoints(20, "prop-1"))

	stored, err := store.GetByID(ctx, "res-1")
	assert.NoError(t, err)
	assert.Equal(t, shared.Points(0), stored.TotalPoints)

	assert.NoError(t, store.Update(ctx, r))

	stored, err = store.GetByID(ctx, "res-1")
	assert.NoError(t, err)
	assert.Equal(t, shared.Points(20), stored.TotalPoints)

	missing := newTestResearcher(t, "res-9", "z@example.com", "77010000009")
	assert.ErrorIs(t, store.Update(ctx, missing), researcher.ErrResearcherNotFound)
}

func TestBadgeStore_SeedIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewBadgeStore()

	catalog := researcher.DefaultBadgeCatalog()
	assert.NoError(t, store.Seed(ctx, catalog))
	assert.NoError(t, store.Seed(ctx, catalog))

	all, err := store.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, len(catalog))

	b, err := store.GetByID(ctx, researcher.BadgeResearchStarter)
	assert.NoError(t, err)
	assert.Equal(t, shared.Points(20), b.PointsThreshold)
}

func TestProposalStore_GetByResearcherID(t *testing.T) {
	ctx := context.Background()
	store := NewProposalStore()

	for _, id := range []string{"prop-1", "prop-2"} {
		p, err := proposal.NewProposal(proposal.NewProposalParams{
			ID:            id,
			ResearcherID:  "res-1",
			Title:         "Title " + id,
			Description:   "Description",
			Methodology:   "Methodology",
			FundingTarget: 1000,
		})
		assert.NoError(t, err)
		assert.NoError(t, store.Create(ctx, p))
	}

	mine, err := store.GetByResearcherID(ctx, "res-1")
	assert.NoError(t, err)
	assert.Len(t, mine, 2)

	// Unknown researcher yields an empty slice, not an error.
	none, err := store.GetByResearcherID(ctx, "res-9")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestMilestoneAndProofStores(t *testing.T) {
	ctx := context.Background()
	milestones := NewMilestoneStore()
	proofs := NewProofStore()

	m, err := milestone.NewMilestone(milestone.NewMilestoneParams{
		ID:          "ms-1",
		Description: "Baseline measurements",
	})
	assert.NoError(t, err)
	assert.NoError(t, milestones.Create(ctx, m))

	p, err := milestone.NewProof(milestone.NewProofParams{
		ID:              "proof-1",
		MilestoneID:     "ms-1",
		MethodologyHash: "m-hash",
		ResultsHash:     "r-hash",
	})
	assert.NoError(t, err)
	assert.NoError(t, proofs.Create(ctx, p))

	m.AttachProof("proof-1")
	assert.NoError(t, milestones.Update(ctx, m))

	stored, err := milestones.GetByID(ctx, "ms-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"proof-1"}, stored.Proofs)

	attached, err := proofs.GetByMilestoneID(ctx, "ms-1")
	assert.NoError(t, err)
	assert.Len(t, attached, 1)

	_, err = proofs.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, milestone.ErrProofNotFound)
}

func TestReviewStore_GetByProposalID(t *testing.T) {
	ctx := context.Background()
	store := NewReviewStore()

	r, err := review.NewReview(review.NewReviewParams{
		ID:          "rev-1",
		ProposalID:  "prop-1",
		ReviewerID:  "res-2",
		Score:       8,
		StakeAmount: 100,
	})
	assert.NoError(t, err)
	assert.NoError(t, store.Create(ctx, r))

	reviews, err := store.GetByProposalID(ctx, "prop-1")
	assert.NoError(t, err)
	assert.Len(t, reviews, 1)

	none, err := store.GetByProposalID(ctx, "prop-9")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestLeaderboardStore_TopAndRank(t *testing.T) {
	ctx := context.Background()
	board := NewLeaderboardStore()

	first := newTestResearcher(t, "res-1", "a@example.com", "77010000001")
	assert.NoError(t, first.AwardPoints(200, "rev-1"))
	second := newTestResearcher(t, "res-2", "b@example.com", "77010000002")
	assert.NoError(t, second.AwardPoints(20, "prop-1"))

	assert.NoError(t, board.UpdateScore(ctx, first))
	assert.NoError(t, board.UpdateScore(ctx, second))

	top, err := board.Top(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, top, 2)
	assert.Equal(t, "res-1", top[0].ResearcherID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, shared.Points(200), top[0].TotalPoints)

	rank, err := board.Rank(ctx, "res-2")
	assert.NoError(t, err)
	assert.Equal(t, 2, rank)

	_, err = board.Rank(ctx, "res-9")
	assert.ErrorIs(t, err, researcher.ErrResearcherNotFound)

	assert.NoError(t, board.Rebuild(ctx, []*researcher.Researcher{second}))
	top, err = board.Top(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, top, 1)
}
