package memory

import (
	"context"
	"sync"

	"github.com/reprofund/research-ledger/internal/domain/review"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW STORE
// ══════════════════════════════════════════════════════════════════════════════

// ReviewStore implements review.Repository in memory.
type ReviewStore struct {
	mu         sync.RWMutex
	byID       map[string]*review.Review
	byProposal map[string][]string
}

// NewReviewStore creates an empty review store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{
		byID:       make(map[string]*review.Review),
		byProposal: make(map[string][]string),
	}
}

// Create creates a new review.
func (s *ReviewStore) Create(_ context.Context, r *review.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; ok {
		return shared.ErrAlreadyExists
	}

	s.byID[r.ID] = r.Clone()
	s.byProposal[r.ProposalID] = append(s.byProposal[r.ProposalID], r.ID)
	return nil
}

// GetByID returns a review by ID.
func (s *ReviewStore) GetByID(_ context.Context, id string) (*review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, review.ErrReviewNotFound
	}
	return r.Clone(), nil
}

// Update saves a modified review record.
func (s *ReviewStore) Update(_ context.Context, r *review.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; !ok {
		return review.ErrReviewNotFound
	}

	s.byID[r.ID] = r.Clone()
	return nil
}

// GetByProposalID returns reviews of a proposal in submission order.
func (s *ReviewStore) GetByProposalID(_ context.Context, proposalID string) ([]*review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byProposal[proposalID]
	result := make([]*review.Review, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.byID[id].Clone())
	}
	return result, nil
}

// Count returns the total number of reviews.
func (s *ReviewStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
