package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFeatureFlags(t *testing.T) {
	ff := LoadFeatureFlags()

	// Proof gating ships disabled; point awards and caching ship enabled.
	assert.False(t, ff.IsEnabled(FeatureMilestoneRequireProof, nil))
	assert.True(t, ff.IsEnabled(FeatureReviewAwardPoints, nil))
	assert.True(t, ff.IsEnabled(FeatureLeaderboardRedisCache, nil))
	assert.True(t, ff.IsEnabled(FeatureResearcherProfileCache, nil))

	assert.False(t, ff.IsEnabled("unknown.feature", nil))
}

func TestEnvironmentOverrideBool(t *testing.T) {
	t.Setenv("FEATURE_MILESTONE_REQUIRE_VERIFIED_PROOF", "true")
	t.Setenv("FEATURE_REVIEW_AWARD_POINTS", "false")

	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureMilestoneRequireProof, nil))
	assert.False(t, ff.IsEnabled(FeatureReviewAwardPoints, nil))
}

func TestEnvironmentOverridePercent(t *testing.T) {
	t.Setenv("FEATURE_MILESTONE_REQUIRE_VERIFIED_PROOF", "50")

	ff := LoadFeatureFlags()

	features := ff.GetAllFeatures()
	f := features[FeatureMilestoneRequireProof]
	require.NotNil(t, f)
	assert.True(t, f.Enabled)
	assert.Equal(t, 50, f.RolloutPercent)

	// Global evaluation (no researcher context) requires full rollout.
	assert.False(t, ff.IsEnabled(FeatureMilestoneRequireProof, nil))
}

func TestRolloutBucketingIsStable(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureMilestoneRequireProof, 50))

	ctx := &FeatureContext{ResearcherID: "f3a0c0de-0000-4000-8000-000000000001"}

	first := ff.IsEnabled(FeatureMilestoneRequireProof, ctx)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureMilestoneRequireProof, ctx))
	}
}

func TestRolloutSplitsPopulation(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureMilestoneRequireProof, 50))

	enabled := 0
	for i := 0; i < 200; i++ {
		ctx := &FeatureContext{ResearcherID: string(rune('a'+i%26)) + string(rune('0'+i%10))}
		if ff.IsEnabled(FeatureMilestoneRequireProof, ctx) {
			enabled++
		}
	}

	// Rough split, not exact: the hash is consistent, not uniform per sample.
	assert.Greater(t, enabled, 0)
	assert.Less(t, enabled, 200)
}

func TestPerResearcherOverrides(t *testing.T) {
	ff := LoadFeatureFlags()

	const id = "researcher-1"
	ctx := &FeatureContext{ResearcherID: id}

	assert.False(t, ff.IsEnabled(FeatureMilestoneRequireProof, ctx))

	ff.SetOverride(id, FeatureMilestoneRequireProof, true)
	assert.True(t, ff.IsEnabled(FeatureMilestoneRequireProof, ctx))

	// Overrides beat the global toggle in both directions.
	require.NoError(t, ff.EnableFeature(FeatureMilestoneRequireProof))
	ff.SetOverride(id, FeatureMilestoneRequireProof, false)
	assert.False(t, ff.IsEnabled(FeatureMilestoneRequireProof, ctx))

	ff.ClearOverrides(id)
	assert.True(t, ff.IsEnabled(FeatureMilestoneRequireProof, ctx))
}

func TestAdminAlwaysEnabled(t *testing.T) {
	ff := LoadFeatureFlags()

	ctx := &FeatureContext{ResearcherID: "researcher-1", IsAdmin: true}
	assert.True(t, ff.IsEnabled(FeatureMilestoneRequireProof, ctx))
}

func TestSetRolloutPercentValidation(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.ErrorIs(t, ff.SetRolloutPercent("unknown.feature", 10), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureReviewAwardPoints, 101), ErrInvalidRolloutPercent)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureReviewAwardPoints, -1), ErrInvalidRolloutPercent)

	require.NoError(t, ff.DisableFeature(FeatureReviewAwardPoints))
	assert.False(t, ff.IsEnabled(FeatureReviewAwardPoints, nil))
}

func TestFeatureNameToEnvKey(t *testing.T) {
	assert.Equal(t, "FEATURE_MILESTONE_REQUIRE_VERIFIED_PROOF", featureNameToEnvKey(FeatureMilestoneRequireProof))
	assert.Equal(t, "FEATURE_LEADERBOARD_REDIS_CACHE", featureNameToEnvKey(FeatureLeaderboardRedisCache))
}
