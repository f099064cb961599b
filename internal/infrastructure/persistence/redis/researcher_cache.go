package redis

import (
	"context"
	"errors"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESEARCHER CACHE
// Read-through cache of researcher profiles in front of PostgreSQL.
// A miss maps to shared.ErrNotFound so callers can fall back without
// importing this package's error set.
// ══════════════════════════════════════════════════════════════════════════════

// cachedResearcher is the JSON shape of a cached profile.
// The API key hash is deliberately not cached.
type cachedResearcher struct {
	ID              string    `json:"id"`
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ReputationScore int       `json:"reputation_score"`
	TotalPoints     int64     `json:"total_points"`
	Badges          []string  `json:"badges"`
	Contributions   []string  `json:"contributions"`
	Achievements    []string  `json:"achievements"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ResearcherCache implements researcher.Cache using Redis.
type ResearcherCache struct {
	cache *Cache
}

// NewResearcherCache creates a new ResearcherCache instance.
func NewResearcherCache(cache *Cache) *ResearcherCache {
	return &ResearcherCache{cache: cache}
}

func researcherKey(id string) string {
	return PrefixResearcher + id
}

// Get retrieves a researcher profile from the cache.
func (c *ResearcherCache) Get(ctx context.Context, researcherID string) (*researcher.Researcher, error) {
	if researcherID == "" {
		return nil, ErrCacheKeyEmpty
	}

	var cached cachedResearcher
	if err := c.cache.Get(ctx, researcherKey(researcherID), &cached); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	return &researcher.Researcher{
		ID:              cached.ID,
		Owner:           shared.Principal(cached.Owner),
		Name:            researcher.Name(cached.Name),
		Address:         researcher.Address(cached.Address),
		Email:           shared.Email(cached.Email),
		Phone:           shared.Phone(cached.Phone),
		ReputationScore: cached.ReputationScore,
		TotalPoints:     shared.Points(cached.TotalPoints),
		Badges:          cached.Badges,
		Contributions:   cached.Contributions,
		Achievements:    cached.Achievements,
		CreatedAt:       cached.CreatedAt,
		UpdatedAt:       cached.UpdatedAt,
	}, nil
}

// Set stores a researcher profile in the cache.
func (c *ResearcherCache) Set(ctx context.Context, r *researcher.Researcher, ttl time.Duration) error {
	if r == nil {
		return ErrCacheNilValue
	}
	if ttl <= 0 {
		ttl = TTLResearcherCache
	}

	cached := cachedResearcher{
		ID:              r.ID,
		Owner:           string(r.Owner),
		Name:            r.Name.String(),
		Address:         r.Address.String(),
		Email:           string(r.Email),
		Phone:           string(r.Phone),
		ReputationScore: r.ReputationScore,
		TotalPoints:     int64(r.TotalPoints),
		Badges:          r.Badges,
		Contributions:   r.Contributions,
		Achievements:    r.Achievements,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}

	return c.cache.Set(ctx, researcherKey(r.ID), cached, ttl)
}

// Invalidate removes a researcher profile from the cache.
func (c *ResearcherCache) Invalidate(ctx context.Context, researcherID string) error {
	if researcherID == "" {
		return ErrCacheKeyEmpty
	}

	return c.cache.Delete(ctx, researcherKey(researcherID))
}
