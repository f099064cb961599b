package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrResearcherIDEmpty is returned when an empty researcher ID is provided.
	ErrResearcherIDEmpty = errors.New("leaderboard_cache: researcher id cannot be empty")

	// ErrNotInLeaderboard is returned when a researcher is not ranked yet.
	ErrNotInLeaderboard = errors.New("leaderboard_cache: researcher not in leaderboard")
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// entryInfo is the JSON shape stored alongside the sorted set score.
type entryInfo struct {
	ResearcherID string `json:"researcher_id"`
	Name         string `json:"name"`
	TotalPoints  int64  `json:"total_points"`
	Badges       int    `json:"badges"`
}

// LeaderboardCache implements researcher.Leaderboard using Redis Sorted Sets.
//
// Architecture:
//   - Sorted Set "leaderboard:points" stores researcherID -> total points
//   - Hash "leaderboard:info" stores researcherID -> entry JSON
//
// This design allows O(log N) rank lookups and O(log N + M) range queries.
type LeaderboardCache struct {
	cache *Cache
}

// Key patterns for leaderboard cache.
const (
	keyLeaderboardPoints = PrefixLeaderboard + "points"
	keyLeaderboardInfo   = PrefixLeaderboard + "info"
)

// NewLeaderboardCache creates a new LeaderboardCache instance.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// UpdateScore updates or adds a single researcher in the leaderboard.
// This is an O(log N) operation.
func (l *LeaderboardCache) UpdateScore(ctx context.Context, r *researcher.Researcher) error {
	if r == nil || r.ID == "" {
		return ErrResearcherIDEmpty
	}

	info := entryInfo{
		ResearcherID: r.ID,
		Name:         r.Name.String(),
		TotalPoints:  int64(r.TotalPoints),
		Badges:       len(r.Badges),
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	// Pipeline keeps score and info in step.
	pipe := l.cache.Client().Pipeline()
	pipe.ZAdd(ctx, keyLeaderboardPoints, redis.Z{
		Score:  float64(r.TotalPoints),
		Member: r.ID,
	})
	pipe.HSet(ctx, keyLeaderboardInfo, r.ID, data)
	pipe.Expire(ctx, keyLeaderboardPoints, TTLLeaderboardCache)
	pipe.Expire(ctx, keyLeaderboardInfo, TTLLeaderboardCache)

	_, err = pipe.Exec(ctx)
	return err
}

// Top returns the top-N entries ordered by points descending.
// This is an O(log N + M) operation where M is the limit.
func (l *LeaderboardCache) Top(ctx context.Context, limit int) ([]researcher.LeaderboardEntry, error) {
	if limit <= 0 {
		return []researcher.LeaderboardEntry{}, nil
	}

	ids, err := l.cache.Client().ZRevRange(ctx, keyLeaderboardPoints, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []researcher.LeaderboardEntry{}, nil
	}

	data, err := l.cache.Client().HMGet(ctx, keyLeaderboardInfo, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]researcher.LeaderboardEntry, 0, len(ids))
	for i, v := range data {
		entry := researcher.LeaderboardEntry{
			Rank:         i + 1,
			ResearcherID: ids[i],
		}

		// Rank comes from the sorted set; the hash only enriches the entry.
		if str, ok := v.(string); ok {
			var info entryInfo
			if err := json.Unmarshal([]byte(str), &info); err == nil {
				entry.Name = info.Name
				entry.TotalPoints = shared.Points(info.TotalPoints)
				entry.Badges = info.Badges
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Rank returns the 1-based position of a researcher.
// Returns ErrNotInLeaderboard if the researcher is not ranked.
func (l *LeaderboardCache) Rank(ctx context.Context, researcherID string) (int, error) {
	if researcherID == "" {
		return 0, ErrResearcherIDEmpty
	}

	// ZRevRank returns a 0-based rank (0 = highest score).
	rank, err := l.cache.Client().ZRevRank(ctx, keyLeaderboardPoints, researcherID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotInLeaderboard
		}
		return 0, err
	}

	return int(rank) + 1, nil
}

// Around returns a window of entries centered on a researcher: radius
// entries above and below their position, inclusive.
// Two round trips: ZRevRank to locate the window, ZRevRange to read it.
func (l *LeaderboardCache) Around(ctx context.Context, researcherID string, radius int) ([]researcher.LeaderboardEntry, error) {
	if researcherID == "" {
		return nil, ErrResearcherIDEmpty
	}
	if radius < 0 {
		radius = 0
	}

	pos, err := l.cache.Client().ZRevRank(ctx, keyLeaderboardPoints, researcherID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotInLeaderboard
		}
		return nil, err
	}

	start := pos - int64(radius)
	if start < 0 {
		start = 0
	}
	stop := pos + int64(radius)

	ids, err := l.cache.Client().ZRevRange(ctx, keyLeaderboardPoints, start, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []researcher.LeaderboardEntry{}, nil
	}

	data, err := l.cache.Client().HMGet(ctx, keyLeaderboardInfo, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]researcher.LeaderboardEntry, 0, len(ids))
	for i, v := range data {
		entry := researcher.LeaderboardEntry{
			Rank:         int(start) + i + 1,
			ResearcherID: ids[i],
		}

		if str, ok := v.(string); ok {
			var info entryInfo
			if err := json.Unmarshal([]byte(str), &info); err == nil {
				entry.Name = info.Name
				entry.TotalPoints = shared.Points(info.TotalPoints)
				entry.Badges = info.Badges
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Rebuild replaces the whole ranking from the durable store.
// Clears existing data and inserts the full set atomically.
func (l *LeaderboardCache) Rebuild(ctx context.Context, researchers []*researcher.Researcher) error {
	pipe := l.cache.Client().TxPipeline()

	pipe.Del(ctx, keyLeaderboardPoints, keyLeaderboardInfo)

	if len(researchers) == 0 {
		_, err := pipe.Exec(ctx)
		return err
	}

	zMembers := make([]redis.Z, 0, len(researchers))
	hashData := make(map[string]interface{}, len(researchers))

	for _, r := range researchers {
		if r == nil || r.ID == "" {
			continue
		}

		zMembers = append(zMembers, redis.Z{
			Score:  float64(r.TotalPoints),
			Member: r.ID,
		})

		info := entryInfo{
			ResearcherID: r.ID,
			Name:         r.Name.String(),
			TotalPoints:  int64(r.TotalPoints),
			Badges:       len(r.Badges),
		}
		data, _ := json.Marshal(info)
		hashData[r.ID] = data
	}

	if len(zMembers) > 0 {
		pipe.ZAdd(ctx, keyLeaderboardPoints, zMembers...)
	}
	if len(hashData) > 0 {
		pipe.HSet(ctx, keyLeaderboardInfo, hashData)
	}

	pipe.Expire(ctx, keyLeaderboardPoints, TTLLeaderboardCache)
	pipe.Expire(ctx, keyLeaderboardInfo, TTLLeaderboardCache)

	_, err := pipe.Exec(ctx)
	return err
}

// Count returns the number of ranked researchers.
func (l *LeaderboardCache) Count(ctx context.Context) (int64, error) {
	return l.cache.Client().ZCard(ctx, keyLeaderboardPoints).Result()
}

// Exists checks if the leaderboard cache has any data.
func (l *LeaderboardCache) Exists(ctx context.Context) (bool, error) {
	count, err := l.cache.Client().Exists(ctx, keyLeaderboardPoints).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RefreshTTL extends the TTL of the leaderboard keys.
func (l *LeaderboardCache) RefreshTTL(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLLeaderboardCache
	}

	pipe := l.cache.Client().Pipeline()
	pipe.Expire(ctx, keyLeaderboardPoints, ttl)
	pipe.Expire(ctx, keyLeaderboardInfo, ttl)

	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate removes all cached leaderboard data.
func (l *LeaderboardCache) Invalidate(ctx context.Context) error {
	return l.cache.Client().Del(ctx, keyLeaderboardPoints, keyLeaderboardInfo).Err()
}
