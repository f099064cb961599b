package researcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

func validParams() NewResearcherParams {
	return NewResearcherParams{
		ID:      "res-1",
		Owner:   shared.Principal("principal-1"),
		Name:    "Alice Researcher",
		Address: "12 Laboratory Lane",
		Email:   "  Alice@Example.COM ",
		Phone:   "+7 (701) 123-45-67",
	}
}

func TestNewResearcher_NormalizesContactFields(t *testing.T) {
	r, err := NewResearcher(validParams())
	assert.NoError(t, err)

	assert.Equal(t, shared.Email("alice@example.com"), r.Email)
	assert.Equal(t, shared.Phone("77011234567"), r.Phone)
	assert.Equal(t, shared.Points(0), r.TotalPoints)
	assert.Empty(t, r.Badges)
	assert.Empty(t, r.Contributions)
}

func TestNewResearcher_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewResearcherParams)
		want   error
	}{
		{"short name", func(p *NewResearcherParams) { p.Name = "A" }, ErrInvalidName},
		{"short address", func(p *NewResearcherParams) { p.Address = "abc" }, ErrInvalidAddress},
		{"missing owner", func(p *NewResearcherParams) { p.Owner = "" }, ErrInvalidOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)

			_, err := NewResearcher(params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewResearcher_RejectsMalformedEmail(t *testing.T) {
	params := validParams()
	params.Email = "not-an-email"

	_, err := NewResearcher(params)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

func TestNewResearcher_RejectsShortPhone(t *testing.T) {
	params := validParams()
	params.Phone = "12345"

	_, err := NewResearcher(params)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

func TestAwardPoints_Monotonic(t *testing.T) {
	r, err := NewResearcher(validParams())
	assert.NoError(t, err)

	assert.NoError(t, r.AwardPoints(20, "prop-1"))
	assert.NoError(t, r.AwardPoints(180, "rev-1"))
	assert.Equal(t, shared.Points(200), r.TotalPoints)
	assert.Equal(t, []string{"prop-1", "rev-1"}, r.Contributions)

	assert.ErrorIs(t, r.AwardPoints(-5, "bad"), ErrNegativePoints)
	assert.Equal(t, shared.Points(200), r.TotalPoints)
}

func TestGrantBadge_Idempotent(t *testing.T) {
	r, err := NewResearcher(validParams())
	assert.NoError(t, err)

	assert.True(t, r.GrantBadge(BadgeResearchStarter))
	assert.False(t, r.GrantBadge(BadgeResearchStarter))
	assert.Equal(t, []string{BadgeResearchStarter}, r.Badges)
}

func TestClone_IsDeep(t *testing.T) {
	r, err := NewResearcher(validParams())
	assert.NoError(t, err)
	assert.NoError(t, r.AwardPoints(20, "prop-1"))

	clone := r.Clone()
	clone.Badges = append(clone.Badges, BadgeReviewMaster)
	clone.Contributions = append(clone.Contributions, "rev-9")

	assert.Empty(t, r.Badges)
	assert.Equal(t, []string{"prop-1"}, r.Contributions)
}
