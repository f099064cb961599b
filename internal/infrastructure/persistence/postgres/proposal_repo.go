package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reprofund/research-ledger/internal/domain/proposal"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROPOSAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProposalRepository implements proposal.Repository for PostgreSQL.
type ProposalRepository struct {
	conn *Connection
}

// NewProposalRepository creates a new ProposalRepository.
func NewProposalRepository(conn *Connection) *ProposalRepository {
	return &ProposalRepository{conn: conn}
}

const proposalColumns = `
	id, researcher_id, title, description, methodology, milestones,
	funding_target, current_funding, stage, reviews, contributor_points,
	timeline, updated_at
`

// contributorPointsRow is the JSONB shape of one contributor ledger entry.
type contributorPointsRow struct {
	ReviewerID string `json:"reviewer_id"`
	Points     int64  `json:"points"`
}

// Create creates a new proposal.
func (r *ProposalRepository) Create(ctx context.Context, p *proposal.Proposal) error {
	query := `
		INSERT INTO proposals (
			id, researcher_id, title, description, methodology, milestones,
			funding_target, current_funding, stage, reviews, contributor_points,
			timeline, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	pointsJSON, err := marshalContributorPoints(p.ContributorPoints)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, query,
		p.ID,
		p.ResearcherID,
		p.Title,
		p.Description,
		p.Methodology,
		p.Milestones,
		int64(p.FundingTarget),
		int64(p.CurrentFunding),
		string(p.Stage),
		p.Reviews,
		pointsJSON,
		p.Timeline,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create proposal: %w", err)
	}

	return nil
}

// GetByID returns a proposal by ID.
func (r *ProposalRepository) GetByID(ctx context.Context, id string) (*proposal.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanProposal(row)
}

// Update updates a proposal.
func (r *ProposalRepository) Update(ctx context.Context, p *proposal.Proposal) error {
	query := `
		UPDATE proposals SET
			milestones = $1,
			current_funding = $2,
			stage = $3,
			reviews = $4,
			contributor_points = $5,
			updated_at = $6
		WHERE id = $7
	`

	pointsJSON, err := marshalContributorPoints(p.ContributorPoints)
	if err != nil {
		return err
	}

	result, err := r.conn.Exec(ctx, query,
		p.Milestones,
		int64(p.CurrentFunding),
		string(p.Stage),
		p.Reviews,
		pointsJSON,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update proposal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return proposal.ErrProposalNotFound
	}

	return nil
}

// GetAll returns all proposals ordered by creation time.
func (r *ProposalRepository) GetAll(ctx context.Context) ([]*proposal.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals ORDER BY timeline ASC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(rows)
}

// GetByResearcherID returns proposals owned by a researcher in creation
// order. An empty result is a valid empty slice, not an error.
func (r *ProposalRepository) GetByResearcherID(ctx context.Context, researcherID string) ([]*proposal.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE researcher_id = $1 ORDER BY timeline ASC`

	rows, err := r.conn.Query(ctx, query, researcherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals by researcher: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(rows)
}

// Count returns the total number of proposals.
func (r *ProposalRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM proposals").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count proposals: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanProposal scans a single proposal from a row.
func (r *ProposalRepository) scanProposal(row pgx.Row) (*proposal.Proposal, error) {
	var p proposal.Proposal
	var fundingTarget, currentFunding int64
	var stage string
	var pointsJSON []byte

	err := row.Scan(
		&p.ID,
		&p.ResearcherID,
		&p.Title,
		&p.Description,
		&p.Methodology,
		&p.Milestones,
		&fundingTarget,
		&currentFunding,
		&stage,
		&p.Reviews,
		&pointsJSON,
		&p.Timeline,
		&p.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, proposal.ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan proposal: %w", err)
	}

	p.FundingTarget = shared.FundingAmount(fundingTarget)
	p.CurrentFunding = shared.FundingAmount(currentFunding)
	p.Stage = proposal.Stage(stage)
	p.ContributorPoints = unmarshalContributorPoints(pointsJSON)

	return &p, nil
}

// scanProposals scans multiple proposals from rows.
func (r *ProposalRepository) scanProposals(rows pgx.Rows) ([]*proposal.Proposal, error) {
	proposals := []*proposal.Proposal{}

	for rows.Next() {
		var p proposal.Proposal
		var fundingTarget, currentFunding int64
		var stage string
		var pointsJSON []byte

		err := rows.Scan(
			&p.ID,
			&p.ResearcherID,
			&p.Title,
			&p.Description,
			&p.Methodology,
			&p.Milestones,
			&fundingTarget,
			&currentFunding,
			&stage,
			&p.Reviews,
			&pointsJSON,
			&p.Timeline,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}

		p.FundingTarget = shared.FundingAmount(fundingTarget)
		p.CurrentFunding = shared.FundingAmount(currentFunding)
		p.Stage = proposal.Stage(stage)
		p.ContributorPoints = unmarshalContributorPoints(pointsJSON)

		proposals = append(proposals, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return proposals, nil
}

// marshalContributorPoints converts the contributor ledger to JSONB bytes.
func marshalContributorPoints(entries []proposal.ContributorPoints) ([]byte, error) {
	rows := make([]contributorPointsRow, len(entries))
	for i, e := range entries {
		rows[i] = contributorPointsRow{
			ReviewerID: e.ReviewerID,
			Points:     int64(e.Points),
		}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contributor points: %w", err)
	}
	return data, nil
}

// unmarshalContributorPoints converts JSONB bytes back to the ledger.
func unmarshalContributorPoints(data []byte) []proposal.ContributorPoints {
	if len(data) == 0 {
		return []proposal.ContributorPoints{}
	}

	var rows []contributorPointsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return []proposal.ContributorPoints{}
	}

	entries := make([]proposal.ContributorPoints, len(rows))
	for i, row := range rows {
		entries[i] = proposal.ContributorPoints{
			ReviewerID: row.ReviewerID,
			Points:     shared.Points(row.Points),
		}
	}
	return entries
}
