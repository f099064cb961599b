package memory

import (
	"context"
	"sync"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROPOSAL STORE
// ══════════════════════════════════════════════════════════════════════════════

// ProposalStore implements proposal.Repository in memory.
type ProposalStore struct {
	mu           sync.RWMutex
	byID         map[string]*proposal.Proposal
	byResearcher map[string][]string
}

// NewProposalStore creates an empty proposal store.
func NewProposalStore() *ProposalStore {
	return &ProposalStore{
		byID:         make(map[string]*proposal.Proposal),
		byResearcher: make(map[string][]string),
	}
}

// Create creates a new proposal.
func (s *ProposalStore) Create(_ context.Context, p *proposal.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; ok {
		return shared.ErrAlreadyExists
	}

	s.byID[p.ID] = p.Clone()
	s.byResearcher[p.ResearcherID] = append(s.byResearcher[p.ResearcherID], p.ID)
	return nil
}

// GetByID returns a proposal by ID.
func (s *ProposalStore) GetByID(_ context.Context, id string) (*proposal.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, proposal.ErrProposalNotFound
	}
	return p.Clone(), nil
}

// Update saves a modified proposal record.
func (s *ProposalStore) Update(_ context.Context, p *proposal.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; !ok {
		return proposal.ErrProposalNotFound
	}

	s.byID[p.ID] = p.Clone()
	return nil
}

// GetAll returns all proposals in unspecified order.
func (s *ProposalStore) GetAll(_ context.Context) ([]*proposal.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*proposal.Proposal, 0, len(s.byID))
	for _, p := range s.byID {
		result = append(result, p.Clone())
	}
	return result, nil
}

// GetByResearcherID returns proposals owned by a researcher, in creation
// order. An empty result is a valid empty slice, not an error.
func (s *ProposalStore) GetByResearcherID(_ context.Context, researcherID string) ([]*proposal.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byResearcher[researcherID]
	result := make([]*proposal.Proposal, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.byID[id].Clone())
	}
	return result, nil
}

// Count returns the total number of proposals.
func (s *ProposalStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
