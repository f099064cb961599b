package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reprofund/research-ledger/internal/domain/review"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ReviewRepository implements review.Repository for PostgreSQL.
type ReviewRepository struct {
	conn *Connection
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(conn *Connection) *ReviewRepository {
	return &ReviewRepository{conn: conn}
}

const reviewColumns = `
	id, proposal_id, reviewer_id, score, comments, stake_amount,
	verified, points_earned, submitted_at
`

// Create creates a new review.
func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	query := `
		INSERT INTO reviews (
			id, proposal_id, reviewer_id, score, comments, stake_amount,
			verified, points_earned, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		rev.ID,
		rev.ProposalID,
		rev.ReviewerID,
		rev.Score,
		rev.Comments,
		int64(rev.StakeAmount),
		rev.Verified,
		int64(rev.PointsEarned),
		rev.SubmittedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// GetByID returns a review by ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*review.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanReview(row)
}

// Update updates a review record (only the verified flag is mutable).
func (r *ReviewRepository) Update(ctx context.Context, rev *review.Review) error {
	query := `UPDATE reviews SET verified = $1 WHERE id = $2`

	result, err := r.conn.Exec(ctx, query, rev.Verified, rev.ID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return review.ErrReviewNotFound
	}

	return nil
}

// GetByProposalID returns reviews of a proposal in submission order.
func (r *ReviewRepository) GetByProposalID(ctx context.Context, proposalID string) ([]*review.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE proposal_id = $1 ORDER BY submitted_at ASC`

	rows, err := r.conn.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*review.Review{}
	for rows.Next() {
		rev, err := r.scanReviewFromRows(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}

	return reviews, rows.Err()
}

// Count returns the total number of reviews.
func (r *ReviewRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM reviews").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// scanReview scans a single review from a row.
func (r *ReviewRepository) scanReview(row pgx.Row) (*review.Review, error) {
	var rev review.Review
	var stakeAmount, pointsEarned int64

	err := row.Scan(
		&rev.ID,
		&rev.ProposalID,
		&rev.ReviewerID,
		&rev.Score,
		&rev.Comments,
		&stakeAmount,
		&rev.Verified,
		&pointsEarned,
		&rev.SubmittedAt,
	)

	if IsNoRows(err) {
		return nil, review.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}

	rev.StakeAmount = shared.FundingAmount(stakeAmount)
	rev.PointsEarned = shared.Points(pointsEarned)

	return &rev, nil
}

// scanReviewFromRows scans a review from rows.
func (r *ReviewRepository) scanReviewFromRows(rows pgx.Rows) (*review.Review, error) {
	var rev review.Review
	var stakeAmount, pointsEarned int64

	err := rows.Scan(
		&rev.ID,
		&rev.ProposalID,
		&rev.ReviewerID,
		&rev.Score,
		&rev.Comments,
		&stakeAmount,
		&rev.Verified,
		&pointsEarned,
		&rev.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}

	rev.StakeAmount = shared.FundingAmount(stakeAmount)
	rev.PointsEarned = shared.Points(pointsEarned)

	return &rev, nil
}
