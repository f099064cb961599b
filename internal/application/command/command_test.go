package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
	"github.com/reprofund/research-ledger/internal/infrastructure/persistence/memory"
)

// testEnv собирает in-memory обвязку для командных обработчиков.
type testEnv struct {
	researchers *memory.ResearcherStore
	proposals   *memory.ProposalStore
	milestones  *memory.MilestoneStore
	proofs      *memory.ProofStore
	reviews     *memory.ReviewStore
	engine      *researcher.Engine
}

func newTestEnv() *testEnv {
	return &testEnv{
		researchers: memory.NewResearcherStore(),
		proposals:   memory.NewProposalStore(),
		milestones:  memory.NewMilestoneStore(),
		proofs:      memory.NewProofStore(),
		reviews:     memory.NewReviewStore(),
		engine:      researcher.NewEngine(researcher.DefaultBadgeCatalog()),
	}
}

// register регистрирует исследователя и возвращает его ID.
func (e *testEnv) register(t *testing.T, name, email, phone string) string {
	t.Helper()

	h := NewRegisterResearcherHandler(e.researchers, nil)
	res, err := h.Handle(context.Background(), RegisterResearcherCommand{
		Name:    name,
		Address: "12 Laboratory Lane",
		Email:   email,
		Phone:   phone,
	})
	require.NoError(t, err)
	return res.ResearcherID
}

// createProposal создаёт предложение и возвращает его ID.
func (e *testEnv) createProposal(t *testing.T, researcherID string, target int64) string {
	t.Helper()

	h := NewCreateProposalHandler(e.proposals, e.researchers, e.engine, nil)
	res, err := h.Handle(context.Background(), CreateProposalCommand{
		ResearcherID:  researcherID,
		Title:         "Reproducibility of cell cultures",
		Description:   "A study of reproducibility in published results",
		Methodology:   "Double-blind replication across three labs",
		FundingTarget: target,
	})
	require.NoError(t, err)
	return res.ProposalID
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterResearcher
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterResearcher_IssuesAPIKeyOnce(t *testing.T) {
	env := newTestEnv()
	h := NewRegisterResearcherHandler(env.researchers, nil)

	res, err := h.Handle(context.Background(), RegisterResearcherCommand{
		Name:    "Alice Chen",
		Address: "12 Laboratory Lane",
		Email:   "  Alice@Example.COM ",
		Phone:   "+7 (701) 123-45-67",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, res.ResearcherID)

	// Ключ имеет вид "<id>.<secret>", секрет в хранилище не попадает.
	parts := strings.SplitN(res.APIKey, ".", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, res.ResearcherID, parts[0])
	assert.NotEmpty(t, parts[1])

	stored, err := env.researchers.GetByID(context.Background(), res.ResearcherID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email.String())
	assert.Equal(t, "77011234567", stored.Phone.String())
	assert.NotContains(t, stored.APIKeyHash, parts[1])
}

func TestRegisterResearcher_DuplicateEmailRejected(t *testing.T) {
	env := newTestEnv()
	h := NewRegisterResearcherHandler(env.researchers, nil)

	env.register(t, "Alice Chen", "alice@example.com", "77011234567")

	_, err := h.Handle(context.Background(), RegisterResearcherCommand{
		Name:    "Another Alice",
		Address: "34 Other Street",
		Email:   "ALICE@example.com",
		Phone:   "77019999999",
	})

	assert.ErrorIs(t, err, shared.ErrDuplicateEmail)
	assert.True(t, shared.IsInvalidPayload(err))
}

func TestRegisterResearcher_DuplicatePhoneRejected(t *testing.T) {
	env := newTestEnv()
	h := NewRegisterResearcherHandler(env.researchers, nil)

	env.register(t, "Alice Chen", "alice@example.com", "77011234567")

	_, err := h.Handle(context.Background(), RegisterResearcherCommand{
		Name:    "Bob Omar",
		Address: "34 Other Street",
		Email:   "bob@example.com",
		Phone:   "+7 701 123 45 67",
	})

	assert.ErrorIs(t, err, shared.ErrDuplicatePhone)
}

func TestRegisterResearcher_MalformedEmailRejected(t *testing.T) {
	env := newTestEnv()
	h := NewRegisterResearcherHandler(env.researchers, nil)

	_, err := h.Handle(context.Background(), RegisterResearcherCommand{
		Name:    "Alice Chen",
		Address: "12 Laboratory Lane",
		Email:   "not-an-email",
		Phone:   "77011234567",
	})

	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateProposal
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProposal_AwardsCreationPoints(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")

	h := NewCreateProposalHandler(env.proposals, env.researchers, env.engine, nil)
	res, err := h.Handle(context.Background(), CreateProposalCommand{
		ResearcherID:  authorID,
		Title:         "Reproducibility of cell cultures",
		Description:   "A study of reproducibility",
		Methodology:   "Replication across labs",
		FundingTarget: 1000,
	})

	require.NoError(t, err)
	assert.Equal(t, string(proposal.StageDraft), res.Stage)
	assert.Equal(t, shared.Points(20), res.PointsAwarded)
	assert.Equal(t, shared.Points(20), res.TotalPoints)

	// Первые 20 очков пересекают порог research_starter.
	require.Len(t, res.BadgesUnlocked, 1)
	assert.Equal(t, researcher.BadgeResearchStarter, res.BadgesUnlocked[0].ID)

	author, err := env.researchers.GetByID(context.Background(), authorID)
	require.NoError(t, err)
	assert.Contains(t, author.Contributions, res.ProposalID)
}

func TestCreateProposal_UnknownResearcher(t *testing.T) {
	env := newTestEnv()
	h := NewCreateProposalHandler(env.proposals, env.researchers, env.engine, nil)

	_, err := h.Handle(context.Background(), CreateProposalCommand{
		ResearcherID:  "missing",
		Title:         "Title",
		Description:   "Description",
		Methodology:   "Methodology",
		FundingTarget: 1000,
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateProposal_InvalidTargetRejected(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")

	h := NewCreateProposalHandler(env.proposals, env.researchers, env.engine, nil)
	_, err := h.Handle(context.Background(), CreateProposalCommand{
		ResearcherID:  authorID,
		Title:         "Title",
		Description:   "Description",
		Methodology:   "Methodology",
		FundingTarget: 0,
	})

	assert.ErrorIs(t, err, proposal.ErrInvalidFundingTarget)
}

// ──────────────────────────────────────────────────────────────────────────────
// FundProposal
// ──────────────────────────────────────────────────────────────────────────────

func TestFundProposal_AccumulatesAndAdvances(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	proposalID := env.createProposal(t, authorID, 1000)

	h := NewFundProposalHandler(env.proposals, nil)

	res, err := h.Handle(context.Background(), FundProposalCommand{ProposalID: proposalID, Amount: 600})
	require.NoError(t, err)
	assert.False(t, res.StageAdvanced)
	assert.Equal(t, string(proposal.StageDraft), res.Stage)

	res, err = h.Handle(context.Background(), FundProposalCommand{ProposalID: proposalID, Amount: 500})
	require.NoError(t, err)
	assert.True(t, res.StageAdvanced)
	assert.True(t, res.FullyFunded)
	assert.Equal(t, shared.FundingAmount(1100), res.CurrentFunding)
	assert.Equal(t, string(proposal.StageFunding), res.Stage)

	// Дальнейшие взносы фазу не трогают.
	res, err = h.Handle(context.Background(), FundProposalCommand{ProposalID: proposalID, Amount: 100})
	require.NoError(t, err)
	assert.False(t, res.StageAdvanced)
	assert.Equal(t, string(proposal.StageFunding), res.Stage)
}

func TestFundProposal_BelowMinimumRejected(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	proposalID := env.createProposal(t, authorID, 1000)

	h := NewFundProposalHandler(env.proposals, nil)
	_, err := h.Handle(context.Background(), FundProposalCommand{ProposalID: proposalID, Amount: 99})

	assert.ErrorIs(t, err, shared.ErrFundingBelowMinimum)

	// Отклонённый взнос не меняет накопление.
	p, getErr := env.proposals.GetByID(context.Background(), proposalID)
	require.NoError(t, getErr)
	assert.Equal(t, shared.FundingAmount(0), p.CurrentFunding)
}

func TestFundProposal_UnknownProposal(t *testing.T) {
	env := newTestEnv()
	h := NewFundProposalHandler(env.proposals, nil)

	_, err := h.Handle(context.Background(), FundProposalCommand{ProposalID: "missing", Amount: 500})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateMilestone / SubmitProof / VerifyMilestone
// ──────────────────────────────────────────────────────────────────────────────

func TestMilestoneLifecycle(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	proposalID := env.createProposal(t, authorID, 1000)

	createH := NewCreateMilestoneHandler(env.milestones, env.proposals, nil)
	created, err := createH.Handle(context.Background(), CreateMilestoneCommand{
		ProposalID:      proposalID,
		Description:     "Collect baseline data",
		RequiredFunding: 300,
		Deadline:        time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, string(milestone.StatusPending), created.Status)

	p, err := env.proposals.GetByID(context.Background(), proposalID)
	require.NoError(t, err)
	assert.Contains(t, p.Milestones, created.MilestoneID)

	// Доказательство не меняет статус этапа.
	proofH := NewSubmitProofHandler(env.milestones, env.proofs, nil)
	proofRes, err := proofH.Handle(context.Background(), SubmitProofCommand{
		MilestoneID:     created.MilestoneID,
		MethodologyHash: "sha256:abc",
		ResultsHash:     "sha256:def",
	})
	require.NoError(t, err)
	assert.Equal(t, string(milestone.ProofPending), proofRes.Status)
	assert.Equal(t, string(milestone.StatusPending), proofRes.MilestoneStatus)

	verifyH := NewVerifyMilestoneHandler(env.milestones, env.proofs, env.proposals, nil, VerifyMilestoneConfig{})
	verified, err := verifyH.Handle(context.Background(), VerifyMilestoneCommand{
		ProposalID:  proposalID,
		MilestoneID: created.MilestoneID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(milestone.StatusCompleted), verified.Status)

	// Повторная верификация отклоняется.
	_, err = verifyH.Handle(context.Background(), VerifyMilestoneCommand{
		ProposalID:  proposalID,
		MilestoneID: created.MilestoneID,
	})
	assert.ErrorIs(t, err, shared.ErrMilestoneNotPending)
}

func TestVerifyMilestone_CombinedNotFound(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	proposalID := env.createProposal(t, authorID, 1000)

	h := NewVerifyMilestoneHandler(env.milestones, env.proofs, env.proposals, nil, VerifyMilestoneConfig{})

	// Отсутствующее предложение и отсутствующий этап неразличимы.
	_, err := h.Handle(context.Background(), VerifyMilestoneCommand{
		ProposalID:  "missing",
		MilestoneID: "also-missing",
	})
	assert.ErrorIs(t, err, ErrProposalOrMilestoneNotFound)

	_, err = h.Handle(context.Background(), VerifyMilestoneCommand{
		ProposalID:  proposalID,
		MilestoneID: "missing",
	})
	assert.ErrorIs(t, err, ErrProposalOrMilestoneNotFound)
}

func TestVerifyMilestone_RequireVerifiedProofFlag(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	proposalID := env.createProposal(t, authorID, 1000)

	createH := NewCreateMilestoneHandler(env.milestones, env.proposals, nil)
	created, err := createH.Handle(context.Background(), CreateMilestoneCommand{
		ProposalID:  proposalID,
		Description: "Collect baseline data",
	})
	require.NoError(t, err)

	strict := NewVerifyMilestoneHandler(env.milestones, env.proofs, env.proposals, nil, VerifyMilestoneConfig{
		RequireVerifiedProof: true,
	})

	cmd := VerifyMilestoneCommand{ProposalID: proposalID, MilestoneID: created.MilestoneID}

	// Без доказательств строгий режим отклоняет верификацию.
	_, err = strict.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrNoVerifiedProof)

	proofH := NewSubmitProofHandler(env.milestones, env.proofs, nil)
	proofRes, err := proofH.Handle(context.Background(), SubmitProofCommand{
		MilestoneID:     created.MilestoneID,
		MethodologyHash: "sha256:abc",
		ResultsHash:     "sha256:def",
	})
	require.NoError(t, err)

	// Pending-доказательства недостаточно.
	_, err = strict.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrNoVerifiedProof)

	proof, err := env.proofs.GetByID(context.Background(), proofRes.ProofID)
	require.NoError(t, err)
	proof.MarkVerified()
	require.NoError(t, env.proofs.Update(context.Background(), proof))

	res, err := strict.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, string(milestone.StatusCompleted), res.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// SubmitReview
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitReview_AwardsLinearPoints(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	reviewerID := env.register(t, "Bob Omar", "bob@example.com", "77029876543")
	proposalID := env.createProposal(t, authorID, 1000)

	h := NewSubmitReviewHandler(env.reviews, env.proposals, env.researchers, env.engine, nil, SubmitReviewConfig{
		AwardPoints: true,
	})

	res, err := h.Handle(context.Background(), SubmitReviewCommand{
		ProposalID:  proposalID,
		ReviewerID:  reviewerID,
		Score:       9,
		Comments:    "Strong methodology, weak controls",
		StakeAmount: 150,
	})

	require.NoError(t, err)
	assert.Equal(t, shared.Points(180), res.PointsEarned)
	assert.Equal(t, shared.Points(180), res.TotalPoints)

	// 180 очков пересекают только порог research_starter (20).
	require.Len(t, res.BadgesUnlocked, 1)
	assert.Equal(t, researcher.BadgeResearchStarter, res.BadgesUnlocked[0].ID)

	p, err := env.proposals.GetByID(context.Background(), proposalID)
	require.NoError(t, err)
	assert.Contains(t, p.Reviews, res.ReviewID)
	require.Len(t, p.ContributorPoints, 1)
	assert.Equal(t, reviewerID, p.ContributorPoints[0].ReviewerID)
	assert.Equal(t, shared.Points(180), p.ContributorPoints[0].Points)
}

func TestSubmitReview_TopScoreUnlocksReviewMaster(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	reviewerID := env.register(t, "Bob Omar", "bob@example.com", "77029876543")
	proposalID := env.createProposal(t, authorID, 1000)

	h := NewSubmitReviewHandler(env.reviews, env.proposals, env.researchers, env.engine, nil, SubmitReviewConfig{
		AwardPoints: true,
	})

	res, err := h.Handle(context.Background(), SubmitReviewCommand{
		ProposalID:  proposalID,
		ReviewerID:  reviewerID,
		Score:       10,
		Comments:    "Exemplary",
		StakeAmount: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, shared.Points(200), res.PointsEarned)

	badgeIDs := make([]string, len(res.BadgesUnlocked))
	for i, b := range res.BadgesUnlocked {
		badgeIDs[i] = b.ID
	}
	assert.Contains(t, badgeIDs, researcher.BadgeResearchStarter)
	assert.Contains(t, badgeIDs, researcher.BadgeReviewMaster)
}

func TestSubmitReview_NoPointsVariant(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	reviewerID := env.register(t, "Bob Omar", "bob@example.com", "77029876543")
	proposalID := env.createProposal(t, authorID, 1000)

	h := NewSubmitReviewHandler(env.reviews, env.proposals, env.researchers, env.engine, nil, SubmitReviewConfig{})

	res, err := h.Handle(context.Background(), SubmitReviewCommand{
		ProposalID:  proposalID,
		ReviewerID:  reviewerID,
		Score:       9,
		Comments:    "ok",
		StakeAmount: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, shared.Points(0), res.PointsEarned)
	assert.Empty(t, res.BadgesUnlocked)

	// Нулевые очки не попадают в ведомость вкладов.
	p, err := env.proposals.GetByID(context.Background(), proposalID)
	require.NoError(t, err)
	assert.Empty(t, p.ContributorPoints)
}

func TestSubmitReview_ValidationErrors(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	reviewerID := env.register(t, "Bob Omar", "bob@example.com", "77029876543")
	proposalID := env.createProposal(t, authorID, 1000)

	h := NewSubmitReviewHandler(env.reviews, env.proposals, env.researchers, env.engine, nil, SubmitReviewConfig{
		AwardPoints: true,
	})

	_, err := h.Handle(context.Background(), SubmitReviewCommand{
		ProposalID: proposalID, ReviewerID: reviewerID, Score: 11, StakeAmount: 100,
	})
	assert.ErrorIs(t, err, shared.ErrScoreOutOfRange)

	_, err = h.Handle(context.Background(), SubmitReviewCommand{
		ProposalID: proposalID, ReviewerID: reviewerID, Score: 5, StakeAmount: 99,
	})
	assert.ErrorIs(t, err, shared.ErrStakeBelowMinimum)

	_, err = h.Handle(context.Background(), SubmitReviewCommand{
		ProposalID: "missing", ReviewerID: reviewerID, Score: 5, StakeAmount: 100,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdvanceProposalStage
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvanceProposalStage_ForwardOnly(t *testing.T) {
	env := newTestEnv()
	authorID := env.register(t, "Alice Chen", "alice@example.com", "77011234567")
	proposalID := env.createProposal(t, authorID, 1000)

	fundH := NewFundProposalHandler(env.proposals, nil)
	_, err := fundH.Handle(context.Background(), FundProposalCommand{ProposalID: proposalID, Amount: 1000})
	require.NoError(t, err)

	h := NewAdvanceProposalStageHandler(env.proposals, nil)

	res, err := h.Handle(context.Background(), AdvanceProposalStageCommand{
		ProposalID:  proposalID,
		TargetStage: string(proposal.StageInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, string(proposal.StageFunding), res.OldStage)
	assert.Equal(t, string(proposal.StageInProgress), res.NewStage)

	// Откат назад запрещён.
	_, err = h.Handle(context.Background(), AdvanceProposalStageCommand{
		ProposalID:  proposalID,
		TargetStage: string(proposal.StageDraft),
	})
	assert.ErrorIs(t, err, shared.ErrStageRegression)

	// Неизвестная фаза - InvalidPayload.
	_, err = h.Handle(context.Background(), AdvanceProposalStageCommand{
		ProposalID:  proposalID,
		TargetStage: "archived",
	})
	assert.True(t, shared.IsInvalidPayload(err))
}
