package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles for the ledger.
// Supports gradual rollout bucketed by researcher ID so behavior changes
// (proof gating, point formulas) can be trialed on a slice of the registry
// before going registry-wide.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	overrides map[string]map[string]bool // researcherID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Researchers are assigned based on hash of their ID
	RolloutPercent int
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	ResearcherID string
	IsAdmin      bool
}

// Predefined feature flag names.
const (
	// === Milestone Features ===

	// FeatureMilestoneRequireProof gates milestone verification on a
	// verified reproduction proof being attached.
	FeatureMilestoneRequireProof = "milestone.require_verified_proof"

	// === Review Features ===

	// FeatureReviewAwardPoints awards reputation points for staked reviews.
	FeatureReviewAwardPoints = "review.award_points"

	// === Leaderboard Features ===

	// FeatureLeaderboardRedisCache serves leaderboard reads from the Redis
	// sorted set instead of Postgres.
	FeatureLeaderboardRedisCache = "leaderboard.redis_cache"

	// FeatureResearcherProfileCache caches researcher profiles in Redis.
	FeatureResearcherProfileCache = "researcher.profile_cache"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:  make(map[string]*Feature),
		overrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Proof gating is off by default: a milestone can be verified without
	// a reproduction proof attached.
	ff.features[FeatureMilestoneRequireProof] = &Feature{
		Name:           FeatureMilestoneRequireProof,
		Description:    "Require a verified proof before milestone verification",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureReviewAwardPoints] = &Feature{
		Name:           FeatureReviewAwardPoints,
		Description:    "Award reputation points for staked reviews",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardRedisCache] = &Feature{
		Name:           FeatureLeaderboardRedisCache,
		Description:    "Serve leaderboard reads from Redis sorted set",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureResearcherProfileCache] = &Feature{
		Name:           FeatureResearcherProfileCache,
		Description:    "Cache researcher profiles in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_MILESTONE_REQUIRE_VERIFIED_PROOF=true
// Example: FEATURE_REVIEW_AWARD_POINTS=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "milestone.require_verified_proof" -> "FEATURE_MILESTONE_REQUIRE_VERIFIED_PROOF"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
// A nil context evaluates the flag globally (rollout must be 100%).
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check per-researcher overrides first
	if ctx != nil && ctx.ResearcherID != "" {
		if overrides, ok := ff.overrides[ctx.ResearcherID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	if feature.RolloutPercent < 100 && ctx != nil && ctx.ResearcherID != "" {
		return isInRollout(ctx.ResearcherID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent >= 100
}

// isInRollout determines if a researcher is in the rollout percentage.
// Uses consistent hashing so researchers stay in their bucket.
func isInRollout(researcherID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(researcherID))
	bucket := int(h.Sum32() % 100)
	return bucket < percent
}

// SetOverride sets a feature override for a specific researcher.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetOverride(researcherID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.overrides[researcherID]; !ok {
		ff.overrides[researcherID] = make(map[string]bool)
	}
	ff.overrides[researcherID][featureName] = enabled
}

// ClearOverrides removes all overrides for a researcher.
func (ff *FeatureFlags) ClearOverrides(researcherID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.overrides, researcherID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
