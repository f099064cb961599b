package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD STORE
// ══════════════════════════════════════════════════════════════════════════════

// leaderboardRow is the internal ranking record.
type leaderboardRow struct {
	researcherID string
	name         string
	points       shared.Points
	badges       int
}

// LeaderboardStore implements researcher.Leaderboard in memory.
// Ranking is recomputed on read; fine for development-sized data sets.
type LeaderboardStore struct {
	mu   sync.RWMutex
	rows map[string]leaderboardRow
}

// NewLeaderboardStore creates an empty leaderboard.
func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{rows: make(map[string]leaderboardRow)}
}

// UpdateScore updates a researcher's ranking entry.
func (s *LeaderboardStore) UpdateScore(_ context.Context, r *researcher.Researcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[r.ID] = leaderboardRow{
		researcherID: r.ID,
		name:         r.Name.String(),
		points:       r.TotalPoints,
		badges:       len(r.Badges),
	}
	return nil
}

// Top returns the top-N ranking entries ordered by points descending.
// Ties break by researcher ID for a stable order.
func (s *LeaderboardStore) Top(_ context.Context, limit int) ([]researcher.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := s.sortedRows()
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	entries := make([]researcher.LeaderboardEntry, len(sorted))
	for i, row := range sorted {
		entries[i] = researcher.LeaderboardEntry{
			Rank:         i + 1,
			ResearcherID: row.researcherID,
			Name:         row.name,
			TotalPoints:  row.points,
			Badges:       row.badges,
		}
	}
	return entries, nil
}

// Rank returns a researcher's 1-based position.
func (s *LeaderboardStore) Rank(_ context.Context, researcherID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, row := range s.sortedRows() {
		if row.researcherID == researcherID {
			return i + 1, nil
		}
	}
	return 0, researcher.ErrResearcherNotFound
}

// Around returns a window of entries centered on a researcher.
func (s *LeaderboardStore) Around(_ context.Context, researcherID string, radius int) ([]researcher.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := s.sortedRows()
	pos := -1
	for i, row := range sorted {
		if row.researcherID == researcherID {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, researcher.ErrResearcherNotFound
	}
	if radius < 0 {
		radius = 0
	}

	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius + 1
	if end > len(sorted) {
		end = len(sorted)
	}

	entries := make([]researcher.LeaderboardEntry, 0, end-start)
	for i := start; i < end; i++ {
		row := sorted[i]
		entries = append(entries, researcher.LeaderboardEntry{
			Rank:         i + 1,
			ResearcherID: row.researcherID,
			Name:         row.name,
			TotalPoints:  row.points,
			Badges:       row.badges,
		})
	}
	return entries, nil
}

// Rebuild replaces the whole ranking from the durable store.
func (s *LeaderboardStore) Rebuild(_ context.Context, researchers []*researcher.Researcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[string]leaderboardRow, len(researchers))
	for _, r := range researchers {
		s.rows[r.ID] = leaderboardRow{
			researcherID: r.ID,
			name:         r.Name.String(),
			points:       r.TotalPoints,
			badges:       len(r.Badges),
		}
	}
	return nil
}

// sortedRows returns rows ordered by points desc, ID asc. Caller must
// hold at least a read lock.
func (s *LeaderboardStore) sortedRows() []leaderboardRow {
	sorted := make([]leaderboardRow, 0, len(s.rows))
	for _, row := range s.rows {
		sorted = append(sorted, row)
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].points != sorted[j].points {
			return sorted[i].points > sorted[j].points
		}
		return sorted[i].researcherID < sorted[j].researcherID
	})
	return sorted
}
