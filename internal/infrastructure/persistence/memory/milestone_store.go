package memory

import (
	"context"
	"sync"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE STORE
// ══════════════════════════════════════════════════════════════════════════════

// MilestoneStore implements milestone.Repository in memory.
type MilestoneStore struct {
	mu   sync.RWMutex
	byID map[string]*milestone.Milestone
}

// NewMilestoneStore creates an empty milestone store.
func NewMilestoneStore() *MilestoneStore {
	return &MilestoneStore{byID: make(map[string]*milestone.Milestone)}
}

// Create creates a new milestone.
func (s *MilestoneStore) Create(_ context.Context, m *milestone.Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[m.ID]; ok {
		return shared.ErrAlreadyExists
	}

	s.byID[m.ID] = m.Clone()
	return nil
}

// GetByID returns a milestone by ID.
func (s *MilestoneStore) GetByID(_ context.Context, id string) (*milestone.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, milestone.ErrMilestoneNotFound
	}
	return m.Clone(), nil
}

// Update saves a modified milestone record.
func (s *MilestoneStore) Update(_ context.Context, m *milestone.Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[m.ID]; !ok {
		return milestone.ErrMilestoneNotFound
	}

	s.byID[m.ID] = m.Clone()
	return nil
}

// GetAll returns all milestones in unspecified order.
func (s *MilestoneStore) GetAll(_ context.Context) ([]*milestone.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*milestone.Milestone, 0, len(s.byID))
	for _, m := range s.byID {
		result = append(result, m.Clone())
	}
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PROOF STORE
// ══════════════════════════════════════════════════════════════════════════════

// ProofStore implements milestone.ProofRepository in memory.
type ProofStore struct {
	mu          sync.RWMutex
	byID        map[string]*milestone.Proof
	byMilestone map[string][]string
}

// NewProofStore creates an empty proof store.
func NewProofStore() *ProofStore {
	return &ProofStore{
		byID:        make(map[string]*milestone.Proof),
		byMilestone: make(map[string][]string),
	}
}

// Create creates a new proof of reproduction.
func (s *ProofStore) Create(_ context.Context, p *milestone.Proof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; ok {
		return shared.ErrAlreadyExists
	}

	clone := *p
	s.byID[p.ID] = &clone
	s.byMilestone[p.MilestoneID] = append(s.byMilestone[p.MilestoneID], p.ID)
	return nil
}

// GetByID returns a proof by ID.
func (s *ProofStore) GetByID(_ context.Context, id string) (*milestone.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, milestone.ErrProofNotFound
	}

	clone := *p
	return &clone, nil
}

// Update saves a modified proof record.
func (s *ProofStore) Update(_ context.Context, p *milestone.Proof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; !ok {
		return milestone.ErrProofNotFound
	}

	clone := *p
	s.byID[p.ID] = &clone
	return nil
}

// GetByMilestoneID returns proofs of a milestone in submission order.
func (s *ProofStore) GetByMilestoneID(_ context.Context, milestoneID string) ([]*milestone.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byMilestone[milestoneID]
	result := make([]*milestone.Proof, 0, len(ids))
	for _, id := range ids {
		clone := *s.byID[id]
		result = append(result, &clone)
	}
	return result, nil
}
