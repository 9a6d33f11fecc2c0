package db

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup. JSONB columns hold the brief's
// artifact and audit documents; scalar columns cover the fields queries
// filter or sort on.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS decision_briefs (
    id                      UUID PRIMARY KEY,
    user_id                 UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title                   TEXT NOT NULL,
    main_input              TEXT NOT NULL DEFAULT '',
    input_type              TEXT NOT NULL DEFAULT 'feature_idea',
    industry_context        TEXT NOT NULL DEFAULT '',
    data_sensitivity        JSONB NOT NULL DEFAULT '[]',
    geography               TEXT NOT NULL DEFAULT '',
    launch_type             TEXT NOT NULL DEFAULT '',
    risk_tolerance          TEXT NOT NULL DEFAULT '',
    status                  TEXT NOT NULL DEFAULT 'draft',
    generation_stage        TEXT NOT NULL DEFAULT 'none',
    error_message           TEXT NOT NULL DEFAULT '',
    entities                JSONB,
    graph                   JSONB,
    prd_sections            JSONB,
    stakeholder_critiques   JSONB,
    checklist               JSONB,
    traceability            JSONB,
    executive_summary       JSONB,
    section_statuses        JSONB NOT NULL DEFAULT '{}',
    stakeholder_risk_levels JSONB NOT NULL DEFAULT '{}',
    assumptions             JSONB NOT NULL DEFAULT '[]',
    regeneration_diffs      JSONB NOT NULL DEFAULT '{}',
    revisions               JSONB NOT NULL DEFAULT '[]',
    timeline_events         JSONB NOT NULL DEFAULT '[]',
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_decision_briefs_user ON decision_briefs(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_decision_briefs_status ON decision_briefs(status);
`

// Migrate applies the schema.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
