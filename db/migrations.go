package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/academy-system/sensitive"
	"github.com/lib/pq"
)

// Every step is additive and safe to run again.
var baseSchema = []string{
	`CREATE TABLE IF NOT EXISTS academies (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT academies_name_key UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		academy_id    BIGINT NOT NULL REFERENCES academies(id) ON DELETE CASCADE,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id         BIGSERIAL PRIMARY KEY,
		academy_id BIGINT NOT NULL REFERENCES academies(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS position TEXT`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS height_cm INTEGER`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS weight_kg INTEGER`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS nationality TEXT`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS preferred_foot TEXT`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS jersey_number INTEGER`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS status TEXT NOT NULL DEFAULT 'active'`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS registration_date DATE NOT NULL DEFAULT CURRENT_DATE`,
	`ALTER TABLE players ADD COLUMN IF NOT EXISTS photo_key TEXT`,
	`CREATE INDEX IF NOT EXISTS players_academy_id_idx ON players (academy_id, id)`,
	`CREATE INDEX IF NOT EXISTS users_academy_id_idx ON users (academy_id)`,
}

// Statements returns the full ordered migration script. Cipher columns are
// derived from the sensitive column mapping so the schema can never lag
// behind it.
func Statements() []string {
	stmts := make([]string, 0, len(baseSchema)+len(sensitive.Columns))
	stmts = append(stmts, baseSchema...)
	for _, c := range sensitive.Columns {
		stmts = append(stmts, fmt.Sprintf(
			"ALTER TABLE players ADD COLUMN IF NOT EXISTS %s BYTEA", pq.QuoteIdentifier(c.Column)))
	}
	return stmts
}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range Statements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	return nil
}
