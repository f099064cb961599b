// Package memory implements in-memory persistence for the research ledger.
// Used in development mode and as the backing store for application tests.
// All stores are safe for concurrent use and return deep copies, so callers
// can never mutate stored state through a returned pointer.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESEARCHER STORE
// ══════════════════════════════════════════════════════════════════════════════

// ResearcherStore implements researcher.Repository in memory.
type ResearcherStore struct {
	mu      sync.RWMutex
	byID    map[string]*researcher.Researcher
	byEmail map[shared.Email]string
	byPhone map[shared.Phone]string
	byOwner map[shared.Principal]string
}

// NewResearcherStore creates an empty researcher store.
func NewResearcherStore() *ResearcherStore {
	return &ResearcherStore{
		byID:    make(map[string]*researcher.Researcher),
		byEmail: make(map[shared.Email]string),
		byPhone: make(map[shared.Phone]string),
		byOwner: make(map[shared.Principal]string),
	}
}

// Create creates a new researcher.
// Returns ErrResearcherAlreadyExists on email or phone conflict.
func (s *ResearcherStore) Create(_ context.Context, r *researcher.Researcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; ok {
		return researcher.ErrResearcherAlreadyExists
	}
	if _, ok := s.byEmail[r.Email]; ok {
		return researcher.ErrResearcherAlreadyExists
	}
	if _, ok := s.byPhone[r.Phone]; ok {
		return researcher.ErrResearcherAlreadyExists
	}

	s.byID[r.ID] = r.Clone()
	s.byEmail[r.Email] = r.ID
	s.byPhone[r.Phone] = r.ID
	if r.Owner != "" {
		s.byOwner[r.Owner] = r.ID
	}

	return nil
}

// GetByID returns a researcher by internal ID.
func (s *ResearcherStore) GetByID(_ context.Context, id string) (*researcher.Researcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, researcher.ErrResearcherNotFound
	}
	return r.Clone(), nil
}

// GetByOwner returns a researcher by owner principal.
func (s *ResearcherStore) GetByOwner(_ context.Context, owner shared.Principal) (*researcher.Researcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byOwner[owner]
	if !ok {
		return nil, researcher.ErrResearcherNotFound
	}
	return s.byID[id].Clone(), nil
}

// GetByEmail returns a researcher by normalized email.
func (s *ResearcherStore) GetByEmail(_ context.Context, email shared.Email) (*researcher.Researcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, researcher.ErrResearcherNotFound
	}
	return s.byID[id].Clone(), nil
}

// GetByPhone returns a researcher by normalized phone.
func (s *ResearcherStore) GetByPhone(_ context.Context, phone shared.Phone) (*researcher.Researcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPhone[phone]
	if !ok {
		return nil, researcher.ErrResearcherNotFound
	}
	return s.byID[id].Clone(), nil
}

// Update saves a modified researcher record.
func (s *ResearcherStore) Update(_ context.Context, r *researcher.Researcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[r.ID]
	if !ok {
		return researcher.ErrResearcherNotFound
	}

	// Contact fields are immutable after registration, but keep the
	// secondary indexes consistent anyway.
	if old.Email != r.Email {
		delete(s.byEmail, old.Email)
		s.byEmail[r.Email] = r.ID
	}
	if old.Phone != r.Phone {
		delete(s.byPhone, old.Phone)
		s.byPhone[r.Phone] = r.ID
	}

	s.byID[r.ID] = r.Clone()
	return nil
}

// GetAll returns all researchers ordered by points descending, ID ascending.
func (s *ResearcherStore) GetAll(_ context.Context) ([]*researcher.Researcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*researcher.Researcher, 0, len(s.byID))
	for _, r := range s.byID {
		result = append(result, r.Clone())
	}

	// Same order as the SQL store: points descending, ID for stable ties.
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalPoints != result[j].TotalPoints {
			return result[i].TotalPoints > result[j].TotalPoints
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// ExistsByEmail checks existence by normalized email.
func (s *ResearcherStore) ExistsByEmail(_ context.Context, email shared.Email) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[email]
	return ok, nil
}

// ExistsByPhone checks existence by normalized phone.
func (s *ResearcherStore) ExistsByPhone(_ context.Context, phone shared.Phone) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byPhone[phone]
	return ok, nil
}

// Count returns the total number of researchers.
func (s *ResearcherStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE STORE
// ══════════════════════════════════════════════════════════════════════════════

// BadgeStore implements researcher.BadgeRepository in memory.
type BadgeStore struct {
	mu     sync.RWMutex
	badges map[string]researcher.Badge
	order  []string
}

// NewBadgeStore creates an empty badge catalog store.
func NewBadgeStore() *BadgeStore {
	return &BadgeStore{badges: make(map[string]researcher.Badge)}
}

// Seed inserts the badge catalog. Idempotent: re-running overwrites
// identical records.
func (s *BadgeStore) Seed(_ context.Context, catalog []researcher.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range catalog {
		if _, ok := s.badges[b.ID]; !ok {
			s.order = append(s.order, b.ID)
		}
		s.badges[b.ID] = b
	}
	return nil
}

// GetByID returns a badge by ID.
func (s *BadgeStore) GetByID(_ context.Context, id string) (*researcher.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.badges[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &b, nil
}

// GetAll returns the full catalog in seed order.
func (s *BadgeStore) GetAll(_ context.Context) ([]researcher.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]researcher.Badge, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.badges[id])
	}
	return result, nil
}
