package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESEARCHER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ResearcherRepository implements researcher.Repository for PostgreSQL.
type ResearcherRepository struct {
	conn *Connection
}

// NewResearcherRepository creates a new ResearcherRepository.
func NewResearcherRepository(conn *Connection) *ResearcherRepository {
	return &ResearcherRepository{conn: conn}
}

const researcherColumns = `
	id, owner_principal, api_key_hash, name, address, email, phone,
	reputation_score, total_points, badges, contributions, achievements,
	created_at, updated_at
`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new researcher.
func (r *ResearcherRepository) Create(ctx context.Context, res *researcher.Researcher) error {
	query := `
		INSERT INTO researchers (
			id, owner_principal, api_key_hash, name, address, email, phone,
			reputation_score, total_points, badges, contributions, achievements,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.conn.Exec(ctx, query,
		res.ID,
		string(res.Owner),
		res.APIKeyHash,
		res.Name.String(),
		res.Address.String(),
		string(res.Email),
		string(res.Phone),
		res.ReputationScore,
		int64(res.TotalPoints),
		res.Badges,
		res.Contributions,
		res.Achievements,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return researcher.ErrResearcherAlreadyExists
		}
		return fmt.Errorf("failed to create researcher: %w", err)
	}

	return nil
}

// GetByID returns a researcher by internal ID.
func (r *ResearcherRepository) GetByID(ctx context.Context, id string) (*researcher.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanResearcher(row)
}

// GetByOwner returns a researcher by owner principal.
func (r *ResearcherRepository) GetByOwner(ctx context.Context, owner shared.Principal) (*researcher.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers WHERE owner_principal = $1`

	row := r.conn.QueryRow(ctx, query, string(owner))
	return r.scanResearcher(row)
}

// GetByEmail returns a researcher by normalized email.
func (r *ResearcherRepository) GetByEmail(ctx context.Context, email shared.Email) (*researcher.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers WHERE email = $1`

	row := r.conn.QueryRow(ctx, query, string(email))
	return r.scanResearcher(row)
}

// GetByPhone returns a researcher by normalized phone.
func (r *ResearcherRepository) GetByPhone(ctx context.Context, phone shared.Phone) (*researcher.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers WHERE phone = $1`

	row := r.conn.QueryRow(ctx, query, string(phone))
	return r.scanResearcher(row)
}

// Update updates a researcher.
func (r *ResearcherRepository) Update(ctx context.Context, res *researcher.Researcher) error {
	query := `
		UPDATE researchers SET
			name = $1,
			address = $2,
			reputation_score = $3,
			total_points = $4,
			badges = $5,
			contributions = $6,
			achievements = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.conn.Exec(ctx, query,
		res.Name.String(),
		res.Address.String(),
		res.ReputationScore,
		int64(res.TotalPoints),
		res.Badges,
		res.Contributions,
		res.Achievements,
		time.Now().UTC(),
		res.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update researcher: %w", err)
	}

	if result.RowsAffected() == 0 {
		return researcher.ErrResearcherNotFound
	}

	return nil
}

// GetAll returns all researchers ordered by points.
func (r *ResearcherRepository) GetAll(ctx context.Context) ([]*researcher.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers ORDER BY total_points DESC, id ASC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query researchers: %w", err)
	}
	defer rows.Close()

	return r.scanResearchers(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Checks
// ─────────────────────────────────────────────────────────────────────────────

// ExistsByEmail checks if a researcher exists by normalized email.
func (r *ResearcherRepository) ExistsByEmail(ctx context.Context, email shared.Email) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM researchers WHERE email = $1)",
		string(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check researcher existence by email: %w", err)
	}
	return exists, nil
}

// ExistsByPhone checks if a researcher exists by normalized phone.
func (r *ResearcherRepository) ExistsByPhone(ctx context.Context, phone shared.Phone) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM researchers WHERE phone = $1)",
		string(phone),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check researcher existence by phone: %w", err)
	}
	return exists, nil
}

// Count returns the total number of researchers.
func (r *ResearcherRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM researchers").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count researchers: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanResearcher scans a single researcher from a row.
func (r *ResearcherRepository) scanResearcher(row pgx.Row) (*researcher.Researcher, error) {
	var res researcher.Researcher
	var owner, name, address, email, phone string
	var totalPoints int64

	err := row.Scan(
		&res.ID,
		&owner,
		&res.APIKeyHash,
		&name,
		&address,
		&email,
		&phone,
		&res.ReputationScore,
		&totalPoints,
		&res.Badges,
		&res.Contributions,
		&res.Achievements,
		&res.CreatedAt,
		&res.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, researcher.ErrResearcherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan researcher: %w", err)
	}

	res.Owner = shared.Principal(owner)
	res.Name = researcher.Name(name)
	res.Address = researcher.Address(address)
	res.Email = shared.Email(email)
	res.Phone = shared.Phone(phone)
	res.TotalPoints = shared.Points(totalPoints)

	return &res, nil
}

// scanResearchers scans multiple researchers from rows.
func (r *ResearcherRepository) scanResearchers(rows pgx.Rows) ([]*researcher.Researcher, error) {
	researchers := []*researcher.Researcher{}

	for rows.Next() {
		var res researcher.Researcher
		var owner, name, address, email, phone string
		var totalPoints int64

		err := rows.Scan(
			&res.ID,
			&owner,
			&res.APIKeyHash,
			&name,
			&address,
			&email,
			&phone,
			&res.ReputationScore,
			&totalPoints,
			&res.Badges,
			&res.Contributions,
			&res.Achievements,
			&res.CreatedAt,
			&res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan researcher: %w", err)
		}

		res.Owner = shared.Principal(owner)
		res.Name = researcher.Name(name)
		res.Address = researcher.Address(address)
		res.Email = shared.Email(email)
		res.Phone = shared.Phone(phone)
		res.TotalPoints = shared.Points(totalPoints)

		researchers = append(researchers, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return researchers, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements researcher.BadgeRepository for PostgreSQL.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// Seed inserts the badge catalog. Re-running overwrites identical records.
func (r *BadgeRepository) Seed(ctx context.Context, catalog []researcher.Badge) error {
	query := `
		INSERT INTO badges (id, name, description, points_threshold)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT(id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			points_threshold = EXCLUDED.points_threshold
	`

	for _, b := range catalog {
		_, err := r.conn.Exec(ctx, query, b.ID, b.Name, b.Description, int64(b.PointsThreshold))
		if err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", b.ID, err)
		}
	}

	return nil
}

// GetByID returns a badge by ID.
func (r *BadgeRepository) GetByID(ctx context.Context, id string) (*researcher.Badge, error) {
	query := `SELECT id, name, description, points_threshold FROM badges WHERE id = $1`

	var b researcher.Badge
	var threshold int64

	err := r.conn.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Description, &threshold)
	if IsNoRows(err) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan badge: %w", err)
	}

	b.PointsThreshold = shared.Points(threshold)
	return &b, nil
}

// GetAll returns the full badge catalog.
func (r *BadgeRepository) GetAll(ctx context.Context) ([]researcher.Badge, error) {
	query := `SELECT id, name, description, points_threshold FROM badges ORDER BY points_threshold ASC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	var badges []researcher.Badge
	for rows.Next() {
		var b researcher.Badge
		var threshold int64

		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &threshold); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}

		b.PointsThreshold = shared.Points(threshold)
		badges = append(badges, b)
	}

	return badges, rows.Err()
}
