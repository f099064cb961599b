package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reprofund/research-ledger/internal/domain/milestone"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MilestoneRepository implements milestone.Repository for PostgreSQL.
type MilestoneRepository struct {
	conn *Connection
}

// NewMilestoneRepository creates a new MilestoneRepository.
func NewMilestoneRepository(conn *Connection) *MilestoneRepository {
	return &MilestoneRepository{conn: conn}
}

const milestoneColumns = `
	id, description, required_funding, deadline, status, proofs,
	created_at, updated_at
`

// Create creates a new milestone.
func (r *MilestoneRepository) Create(ctx context.Context, m *milestone.Milestone) error {
	query := `
		INSERT INTO milestones (
			id, description, required_funding, deadline, status, proofs,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var deadline *time.Time
	if !m.Deadline.IsZero() {
		deadline = &m.Deadline
	}

	_, err := r.conn.Exec(ctx, query,
		m.ID,
		m.Description,
		int64(m.RequiredFunding),
		deadline,
		string(m.Status),
		m.Proofs,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create milestone: %w", err)
	}

	return nil
}

// GetByID returns a milestone by ID.
func (r *MilestoneRepository) GetByID(ctx context.Context, id string) (*milestone.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanMilestone(row)
}

// Update updates a milestone.
func (r *MilestoneRepository) Update(ctx context.Context, m *milestone.Milestone) error {
	query := `
		UPDATE milestones SET
			status = $1,
			proofs = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.conn.Exec(ctx, query,
		string(m.Status),
		m.Proofs,
		time.Now().UTC(),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}

	if result.RowsAffected() == 0 {
		return milestone.ErrMilestoneNotFound
	}

	return nil
}

// GetAll returns all milestones ordered by creation time.
func (r *MilestoneRepository) GetAll(ctx context.Context) ([]*milestone.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones ORDER BY created_at ASC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	milestones := []*milestone.Milestone{}
	for rows.Next() {
		m, err := r.scanMilestoneFromRows(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, rows.Err()
}

// scanMilestone scans a single milestone from a row.
func (r *MilestoneRepository) scanMilestone(row pgx.Row) (*milestone.Milestone, error) {
	var m milestone.Milestone
	var requiredFunding int64
	var deadline *time.Time
	var status string

	err := row.Scan(
		&m.ID,
		&m.Description,
		&requiredFunding,
		&deadline,
		&status,
		&m.Proofs,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, milestone.ErrMilestoneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan milestone: %w", err)
	}

	m.RequiredFunding = shared.FundingAmount(requiredFunding)
	if deadline != nil {
		m.Deadline = *deadline
	}
	m.Status = milestone.Status(status)

	return &m, nil
}

// scanMilestoneFromRows scans a milestone from rows.
func (r *MilestoneRepository) scanMilestoneFromRows(rows pgx.Rows) (*milestone.Milestone, error) {
	var m milestone.Milestone
	var requiredFunding int64
	var deadline *time.Time
	var status string

	err := rows.Scan(
		&m.ID,
		&m.Description,
		&requiredFunding,
		&deadline,
		&status,
		&m.Proofs,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan milestone: %w", err)
	}

	m.RequiredFunding = shared.FundingAmount(requiredFunding)
	if deadline != nil {
		m.Deadline = *deadline
	}
	m.Status = milestone.Status(status)

	return &m, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PROOF REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProofRepository implements milestone.ProofRepository for PostgreSQL.
type ProofRepository struct {
	conn *Connection
}

// NewProofRepository creates a new ProofRepository.
func NewProofRepository(conn *Connection) *ProofRepository {
	return &ProofRepository{conn: conn}
}

const proofColumns = `
	id, milestone_id, methodology_hash, results_hash, status, submitted_at
`

// Create creates a new proof of reproduction.
func (r *ProofRepository) Create(ctx context.Context, p *milestone.Proof) error {
	query := `
		INSERT INTO proofs (
			id, milestone_id, methodology_hash, results_hash, status, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.MilestoneID,
		p.MethodologyHash,
		p.ResultsHash,
		string(p.Status),
		p.SubmittedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create proof: %w", err)
	}

	return nil
}

// GetByID returns a proof by ID.
func (r *ProofRepository) GetByID(ctx context.Context, id string) (*milestone.Proof, error) {
	query := `SELECT ` + proofColumns + ` FROM proofs WHERE id = $1`

	var p milestone.Proof
	var status string

	err := r.conn.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.MilestoneID,
		&p.MethodologyHash,
		&p.ResultsHash,
		&status,
		&p.SubmittedAt,
	)

	if IsNoRows(err) {
		return nil, milestone.ErrProofNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan proof: %w", err)
	}

	p.Status = milestone.ProofStatus(status)
	return &p, nil
}

// Update updates a proof record.
func (r *ProofRepository) Update(ctx context.Context, p *milestone.Proof) error {
	query := `UPDATE proofs SET status = $1 WHERE id = $2`

	result, err := r.conn.Exec(ctx, query, string(p.Status), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update proof: %w", err)
	}

	if result.RowsAffected() == 0 {
		return milestone.ErrProofNotFound
	}

	return nil
}

// GetByMilestoneID returns proofs of a milestone in submission order.
func (r *ProofRepository) GetByMilestoneID(ctx context.Context, milestoneID string) ([]*milestone.Proof, error) {
	query := `SELECT ` + proofColumns + ` FROM proofs WHERE milestone_id = $1 ORDER BY submitted_at ASC`

	rows, err := r.conn.Query(ctx, query, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proofs: %w", err)
	}
	defer rows.Close()

	proofs := []*milestone.Proof{}
	for rows.Next() {
		var p milestone.Proof
		var status string

		err := rows.Scan(
			&p.ID,
			&p.MilestoneID,
			&p.MethodologyHash,
			&p.ResultsHash,
			&status,
			&p.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proof: %w", err)
		}

		p.Status = milestone.ProofStatus(status)
		proofs = append(proofs, &p)
	}

	return proofs, rows.Err()
}
