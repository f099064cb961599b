package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
	"github.com/reprofund/research-ledger/internal/infrastructure/persistence/memory"
)

// seedResearcher кладёт исследователя с заданными очками в хранилище.
func seedResearcher(t *testing.T, store *memory.ResearcherStore, id, name, email, phone string, points shared.Points) *researcher.Researcher {
	t.Helper()

	r, err := researcher.NewResearcher(researcher.NewResearcherParams{
		ID:      id,
		Owner:   shared.Principal("owner-" + id),
		Name:    name,
		Address: "12 Laboratory Lane",
		Email:   email,
		Phone:   phone,
	})
	require.NoError(t, err)

	if points > 0 {
		require.NoError(t, r.AwardPoints(points, ""))
	}

	require.NoError(t, store.Create(context.Background(), r))
	return r
}

// seedProposal кладёт предложение в хранилище.
func seedProposal(t *testing.T, store *memory.ProposalStore, id, researcherID string) *proposal.Proposal {
	t.Helper()

	p, err := proposal.NewProposal(proposal.NewProposalParams{
		ID:            id,
		ResearcherID:  researcherID,
		Title:         "Reproducibility study",
		Description:   "Description",
		Methodology:   "Methodology",
		FundingTarget: 1000,
	})
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Researcher queries
// ──────────────────────────────────────────────────────────────────────────────

func TestGetResearcherByID(t *testing.T) {
	store := memory.NewResearcherStore()
	seedResearcher(t, store, "r1", "Alice Chen", "alice@example.com", "77011234567", 40)

	h := NewGetResearcherHandler(store, nil)

	dto, err := h.HandleByID(context.Background(), GetResearcherByIDQuery{ResearcherID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Chen", dto.Name)
	assert.Equal(t, int64(40), dto.TotalPoints)

	_, err = h.HandleByID(context.Background(), GetResearcherByIDQuery{ResearcherID: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Пустой ID отсекается до похода в хранилище.
	_, err = h.HandleByID(context.Background(), GetResearcherByIDQuery{ResearcherID: "   "})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestGetResearcherByOwner(t *testing.T) {
	store := memory.NewResearcherStore()
	r := seedResearcher(t, store, "r1", "Alice Chen", "alice@example.com", "77011234567", 0)

	h := NewGetResearcherHandler(store, nil)

	dto, err := h.HandleByOwner(context.Background(), GetResearcherByOwnerQuery{Owner: r.Owner})
	require.NoError(t, err)
	assert.Equal(t, "r1", dto.ID)

	_, err = h.HandleByOwner(context.Background(), GetResearcherByOwnerQuery{Owner: "stranger"})
	assert.ErrorIs(t, err, shared.ErrOwnerHasNoResearcher)
}

func TestGetAllResearchers_EmptyIsNotFound(t *testing.T) {
	store := memory.NewResearcherStore()
	h := NewGetAllResearchersHandler(store)

	_, err := h.Handle(context.Background(), GetAllResearchersQuery{})
	assert.ErrorIs(t, err, shared.ErrNoResearchers)
	assert.True(t, shared.IsNotFound(err))

	seedResearcher(t, store, "r1", "Alice Chen", "alice@example.com", "77011234567", 0)
	res, err := h.Handle(context.Background(), GetAllResearchersQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Proposal queries
// ──────────────────────────────────────────────────────────────────────────────

func TestGetProposalByID(t *testing.T) {
	store := memory.NewProposalStore()
	p := seedProposal(t, store, "p1", "r1")
	p.AttachReview("rev1", "r2", 180)
	require.NoError(t, store.Update(context.Background(), p))

	h := NewGetProposalHandler(store)

	dto, err := h.Handle(context.Background(), GetProposalByIDQuery{ProposalID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "r1", dto.ResearcherID)
	assert.False(t, dto.FullyFunded)
	require.Len(t, dto.ContributorPoints, 1)
	assert.Equal(t, int64(180), dto.ContributorPoints[0].Points)

	_, err = h.Handle(context.Background(), GetProposalByIDQuery{ProposalID: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetProposalsByResearcher_EmptyIsNotFound(t *testing.T) {
	store := memory.NewProposalStore()
	seedProposal(t, store, "p1", "r1")

	h := NewGetProposalsByResearcherHandler(store)

	res, err := h.Handle(context.Background(), GetProposalsByResearcherQuery{ResearcherID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalCount)

	// Исследователь без предложений даёт NotFound, не пустой список.
	_, err = h.Handle(context.Background(), GetProposalsByResearcherQuery{ResearcherID: "r2"})
	assert.ErrorIs(t, err, shared.ErrNoProposals)
}

func TestGetAllProposals_StageFilter(t *testing.T) {
	store := memory.NewProposalStore()
	seedProposal(t, store, "p1", "r1")
	funded := seedProposal(t, store, "p2", "r1")
	_, err := funded.AddFunding(1000)
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), funded))

	h := NewGetAllProposalsHandler(store)

	res, err := h.Handle(context.Background(), GetAllProposalsQuery{Stage: string(proposal.StageFunding)})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "p2", res.Proposals[0].ID)

	// Фильтр без совпадений - NotFound.
	_, err = h.Handle(context.Background(), GetAllProposalsQuery{Stage: string(proposal.StageCompleted)})
	assert.ErrorIs(t, err, shared.ErrNoProposals)

	_, err = h.Handle(context.Background(), GetAllProposalsQuery{Stage: "archived"})
	assert.True(t, shared.IsInvalidPayload(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Milestone query
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMilestoneWithProofs(t *testing.T) {
	milestones := memory.NewMilestoneStore()
	proofs := memory.NewProofStore()

	m, err := milestone.NewMilestone(milestone.NewMilestoneParams{
		ID:          "m1",
		Description: "Collect baseline data",
	})
	require.NoError(t, err)
	require.NoError(t, milestones.Create(context.Background(), m))

	proof, err := milestone.NewProof(milestone.NewProofParams{
		ID:              "pr1",
		MilestoneID:     "m1",
		MethodologyHash: "sha256:abc",
		ResultsHash:     "sha256:def",
	})
	require.NoError(t, err)
	require.NoError(t, proofs.Create(context.Background(), proof))

	h := NewGetMilestoneHandler(milestones, proofs)

	dto, err := h.Handle(context.Background(), GetMilestoneByIDQuery{MilestoneID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, string(milestone.StatusPending), dto.Status)
	assert.Nil(t, dto.Deadline)
	require.Len(t, dto.Proofs, 1)
	assert.Equal(t, "pr1", dto.Proofs[0].ID)

	_, err = h.Handle(context.Background(), GetMilestoneByIDQuery{MilestoneID: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Leaderboard queries
// ──────────────────────────────────────────────────────────────────────────────

func TestGetLeaderboard_FromCache(t *testing.T) {
	researchers := memory.NewResearcherStore()
	lb := memory.NewLeaderboardStore()

	alice := seedResearcher(t, researchers, "r1", "Alice Chen", "alice@example.com", "77011234567", 200)
	bob := seedResearcher(t, researchers, "r2", "Bob Omar", "bob@example.com", "77029876543", 40)
	require.NoError(t, lb.UpdateScore(context.Background(), alice))
	require.NoError(t, lb.UpdateScore(context.Background(), bob))

	h := NewGetLeaderboardHandler(lb, researchers)

	res, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 10})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "r1", res.Entries[0].ResearcherID)
	assert.Equal(t, 1, res.Entries[0].Rank)
	assert.Equal(t, "r2", res.Entries[1].ResearcherID)
}

func TestGetLeaderboard_FallsBackToStore(t *testing.T) {
	researchers := memory.NewResearcherStore()
	lb := memory.NewLeaderboardStore()

	seedResearcher(t, researchers, "r1", "Alice Chen", "alice@example.com", "77011234567", 200)
	seedResearcher(t, researchers, "r2", "Bob Omar", "bob@example.com", "77029876543", 500)

	h := NewGetLeaderboardHandler(lb, researchers)

	// Кеш пуст: рейтинг строится из хранилища и перестраивает кеш.
	res, err := h.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "r2", res.Entries[0].ResearcherID)

	rank, err := lb.Rank(context.Background(), "r2")
	require.NoError(t, err)
	assert.Equal(t, 1, rank)
}

func TestGetResearcherRank(t *testing.T) {
	researchers := memory.NewResearcherStore()
	lb := memory.NewLeaderboardStore()

	alice := seedResearcher(t, researchers, "r1", "Alice Chen", "alice@example.com", "77011234567", 200)
	require.NoError(t, lb.UpdateScore(context.Background(), alice))

	h := NewGetLeaderboardHandler(lb, researchers)

	res, err := h.HandleRank(context.Background(), GetResearcherRankQuery{ResearcherID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rank)

	_, err = h.HandleRank(context.Background(), GetResearcherRankQuery{ResearcherID: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetLeaderboardNeighbors(t *testing.T) {
	researchers := memory.NewResearcherStore()
	lb := memory.NewLeaderboardStore()

	// Пять исследователей с убывающими очками: r1=500 .. r5=100.
	for i, pts := range []shared.Points{500, 400, 300, 200, 100} {
		id := fmt.Sprintf("r%d", i+1)
		r := seedResearcher(t, researchers, id,
			fmt.Sprintf("Researcher %d", i+1),
			fmt.Sprintf("n%d@example.com", i+1),
			fmt.Sprintf("7701123456%d", i), pts)
		require.NoError(t, lb.UpdateScore(context.Background(), r))
	}

	h := NewGetLeaderboardHandler(lb, researchers)

	res, err := h.HandleNeighbors(context.Background(), GetLeaderboardNeighborsQuery{ResearcherID: "r3", Radius: 1})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, "r2", res.Entries[0].ResearcherID)
	assert.Equal(t, 2, res.Entries[0].Rank)
	assert.Equal(t, "r3", res.Entries[1].ResearcherID)
	assert.Equal(t, "r4", res.Entries[2].ResearcherID)

	// Окно у края рейтинга обрезается, а не заворачивается.
	res, err = h.HandleNeighbors(context.Background(), GetLeaderboardNeighborsQuery{ResearcherID: "r1", Radius: 2})
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, 1, res.Entries[0].Rank)

	_, err = h.HandleNeighbors(context.Background(), GetLeaderboardNeighborsQuery{ResearcherID: "missing", Radius: 1})
	assert.ErrorIs(t, err, shared.ErrResearcherNotFound)
}

func TestGetLeaderboardNeighbors_FallsBackToStore(t *testing.T) {
	researchers := memory.NewResearcherStore()

	seedResearcher(t, researchers, "r1", "Alice Chen", "alice@example.com", "77011234567", 200)
	seedResearcher(t, researchers, "r2", "Bob Omar", "bob@example.com", "77029876543", 500)

	h := NewGetLeaderboardHandler(nil, researchers)

	res, err := h.HandleNeighbors(context.Background(), GetLeaderboardNeighborsQuery{ResearcherID: "r1", Radius: 2})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "r2", res.Entries[0].ResearcherID)
	assert.Equal(t, 2, res.Entries[1].Rank)
}

// ──────────────────────────────────────────────────────────────────────────────
// Profile query
// ──────────────────────────────────────────────────────────────────────────────

func TestGetResearcherProfile(t *testing.T) {
	researchers := memory.NewResearcherStore()
	proposals := memory.NewProposalStore()
	lb := memory.NewLeaderboardStore()

	alice := seedResearcher(t, researchers, "r1", "Alice Chen", "alice@example.com", "77011234567", 200)
	seedProposal(t, proposals, "p1", "r1")
	require.NoError(t, lb.UpdateScore(context.Background(), alice))

	h := NewGetResearcherProfileHandler(researchers, proposals, lb)

	res, err := h.Handle(context.Background(), GetResearcherProfileQuery{Owner: alice.Owner})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.Researcher.ID)
	require.Len(t, res.Proposals, 1)
	assert.Equal(t, 1, res.Rank)

	// Профиль с нулём предложений - не ошибка (в отличие от списка по ID).
	bob := seedResearcher(t, researchers, "r2", "Bob Omar", "bob@example.com", "77029876543", 0)
	res, err = h.Handle(context.Background(), GetResearcherProfileQuery{Owner: bob.Owner})
	require.NoError(t, err)
	assert.Empty(t, res.Proposals)

	_, err = h.Handle(context.Background(), GetResearcherProfileQuery{Owner: "stranger"})
	assert.ErrorIs(t, err, shared.ErrOwnerHasNoResearcher)
}
