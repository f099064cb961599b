package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// The schema mirrors the domain invariants with CHECK constraints, so
// corrupt state cannot be written even by a buggy caller.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_researchers",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_proposals",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_milestones_and_proofs",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_reviews",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Migration 001: researchers and badge catalog
// ─────────────────────────────────────────────────────────────────────────────

const migration001Up = `
CREATE TABLE IF NOT EXISTS researchers (
	id TEXT PRIMARY KEY,
	owner_principal TEXT NOT NULL,
	api_key_hash TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	reputation_score INTEGER NOT NULL DEFAULT 0,
	total_points BIGINT NOT NULL DEFAULT 0 CHECK (total_points >= 0),
	badges TEXT[] NOT NULL DEFAULT '{}',
	contributions TEXT[] NOT NULL DEFAULT '{}',
	achievements TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_researchers_email ON researchers(email);
CREATE UNIQUE INDEX IF NOT EXISTS idx_researchers_phone ON researchers(phone);
CREATE UNIQUE INDEX IF NOT EXISTS idx_researchers_owner ON researchers(owner_principal);
CREATE INDEX IF NOT EXISTS idx_researchers_points ON researchers(total_points DESC);

CREATE TABLE IF NOT EXISTS badges (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	points_threshold BIGINT NOT NULL CHECK (points_threshold >= 0)
);
`

const migration001Down = `
DROP TABLE IF EXISTS badges;
DROP TABLE IF EXISTS researchers;
`

// ─────────────────────────────────────────────────────────────────────────────
// Migration 002: proposals
// ─────────────────────────────────────────────────────────────────────────────

const migration002Up = `
CREATE TABLE IF NOT EXISTS proposals (
	id TEXT PRIMARY KEY,
	researcher_id TEXT NOT NULL REFERENCES researchers(id),
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	methodology TEXT NOT NULL,
	milestones TEXT[] NOT NULL DEFAULT '{}',
	funding_target BIGINT NOT NULL CHECK (funding_target > 0),
	current_funding BIGINT NOT NULL DEFAULT 0 CHECK (current_funding >= 0),
	stage TEXT NOT NULL DEFAULT 'draft'
		CHECK (stage IN ('draft', 'funding', 'in-progress', 'completed')),
	reviews TEXT[] NOT NULL DEFAULT '{}',
	contributor_points JSONB NOT NULL DEFAULT '[]',
	timeline TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_proposals_researcher ON proposals(researcher_id);
CREATE INDEX IF NOT EXISTS idx_proposals_stage ON proposals(stage);
`

const migration002Down = `
DROP TABLE IF EXISTS proposals;
`

// ─────────────────────────────────────────────────────────────────────────────
// Migration 003: milestones and proofs of reproduction
// ─────────────────────────────────────────────────────────────────────────────

const migration003Up = `
CREATE TABLE IF NOT EXISTS milestones (
	id TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	required_funding BIGINT NOT NULL DEFAULT 0 CHECK (required_funding >= 0),
	deadline TIMESTAMP WITH TIME ZONE,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'completed')),
	proofs TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS proofs (
	id TEXT PRIMARY KEY,
	milestone_id TEXT NOT NULL REFERENCES milestones(id),
	methodology_hash TEXT NOT NULL,
	results_hash TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'verified')),
	submitted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_proofs_milestone ON proofs(milestone_id);
`

const migration003Down = `
DROP TABLE IF EXISTS proofs;
DROP TABLE IF EXISTS milestones;
`

// ─────────────────────────────────────────────────────────────────────────────
// Migration 004: reviews
// ─────────────────────────────────────────────────────────────────────────────

const migration004Up = `
CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	proposal_id TEXT NOT NULL REFERENCES proposals(id),
	reviewer_id TEXT NOT NULL,
	score INTEGER NOT NULL CHECK (score >= 1 AND score <= 10),
	comments TEXT NOT NULL DEFAULT '',
	stake_amount BIGINT NOT NULL CHECK (stake_amount >= 100),
	verified BOOLEAN NOT NULL DEFAULT FALSE,
	points_earned BIGINT NOT NULL DEFAULT 0 CHECK (points_earned >= 0),
	submitted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reviews_proposal ON reviews(proposal_id);
CREATE INDEX IF NOT EXISTS idx_reviews_reviewer ON reviews(reviewer_id);
`

const migration004Down = `
DROP TABLE IF EXISTS reviews;
`
