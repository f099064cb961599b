package milestone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validMilestoneParams() NewMilestoneParams {
	return NewMilestoneParams{
		ID:              "ms-1",
		Description:     "Collect baseline measurements",
		RequiredFunding: 500,
		Deadline:        time.Now().UTC().Add(30 * 24 * time.Hour),
	}
}

func TestNewMilestone_StartsPending(t *testing.T) {
	m, err := NewMilestone(validMilestoneParams())
	assert.NoError(t, err)

	assert.Equal(t, StatusPending, m.Status)
	assert.True(t, m.IsPending())
	assert.Empty(t, m.Proofs)
}

func TestNewMilestone_Validation(t *testing.T) {
	params := validMilestoneParams()
	params.Description = "   "
	_, err := NewMilestone(params)
	assert.ErrorIs(t, err, ErrInvalidMilestoneDescription)

	params = validMilestoneParams()
	params.RequiredFunding = -1
	_, err = NewMilestone(params)
	assert.ErrorIs(t, err, ErrInvalidRequiredFunding)
}

func TestVerify_OnlyOnce(t *testing.T) {
	m, err := NewMilestone(validMilestoneParams())
	assert.NoError(t, err)

	assert.NoError(t, m.Verify())
	assert.Equal(t, StatusCompleted, m.Status)

	// Повторная верификация отклоняется.
	assert.ErrorIs(t, m.Verify(), ErrNotPending)
	assert.Equal(t, StatusCompleted, m.Status)
}

func TestAttachProof_DoesNotChangeStatus(t *testing.T) {
	m, err := NewMilestone(validMilestoneParams())
	assert.NoError(t, err)

	m.AttachProof("proof-1")
	m.AttachProof("")
	m.AttachProof("proof-2")

	assert.Equal(t, []string{"proof-1", "proof-2"}, m.Proofs)
	assert.Equal(t, StatusPending, m.Status)
}

func TestIsOverdue(t *testing.T) {
	now := time.Now().UTC()

	m, err := NewMilestone(validMilestoneParams())
	assert.NoError(t, err)
	m.Deadline = now.Add(-time.Hour)

	assert.True(t, m.IsOverdue(now))

	assert.NoError(t, m.Verify())
	assert.False(t, m.IsOverdue(now))

	m2, err := NewMilestone(validMilestoneParams())
	assert.NoError(t, err)
	m2.Deadline = time.Time{}
	assert.False(t, m2.IsOverdue(now))
}

func TestNewProof_RequiresBothHashes(t *testing.T) {
	_, err := NewProof(NewProofParams{
		ID: "proof-1", MilestoneID: "ms-1", MethodologyHash: "", ResultsHash: "abc",
	})
	assert.ErrorIs(t, err, ErrEmptyHash)

	_, err = NewProof(NewProofParams{
		ID: "proof-1", MilestoneID: "ms-1", MethodologyHash: "abc", ResultsHash: "  ",
	})
	assert.ErrorIs(t, err, ErrEmptyHash)

	p, err := NewProof(NewProofParams{
		ID: "proof-1", MilestoneID: "ms-1", MethodologyHash: " m-hash ", ResultsHash: "r-hash",
	})
	assert.NoError(t, err)
	assert.Equal(t, "m-hash", p.MethodologyHash)
	assert.Equal(t, ProofPending, p.Status)
}

func TestProof_MarkVerified(t *testing.T) {
	p, err := NewProof(NewProofParams{
		ID: "proof-1", MilestoneID: "ms-1", MethodologyHash: "m", ResultsHash: "r",
	})
	assert.NoError(t, err)

	p.MarkVerified()
	assert.Equal(t, ProofVerified, p.Status)
}

func TestMilestoneClone_IsDeep(t *testing.T) {
	m, err := NewMilestone(validMilestoneParams())
	assert.NoError(t, err)
	m.AttachProof("proof-1")

	clone := m.Clone()
	clone.AttachProof("proof-2")

	assert.Equal(t, []string{"proof-1"}, m.Proofs)
}
