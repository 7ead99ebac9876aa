package db

import (
	"context"
	"fmt"
)

// SchemaVersion is stored in pinvite_metadata for future migrations.
const SchemaVersion = 1

// Indexes back the sortable columns and the default pending-only filter.
var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_invites_status ON pinvite_invites(status, expires_at)",
	"CREATE INDEX IF NOT EXISTS idx_invites_email ON pinvite_invites(email)",
	"CREATE INDEX IF NOT EXISTS idx_invites_created ON pinvite_invites(created_at)",
	"CREATE INDEX IF NOT EXISTS idx_invites_type ON pinvite_invites(type)",
}

const pgInvitesTable = `
	CREATE TABLE IF NOT EXISTS pinvite_invites (
		id              TEXT PRIMARY KEY,
		type            TEXT NOT NULL DEFAULT 'email',
		email           TEXT NOT NULL,
		role            TEXT NOT NULL DEFAULT '',
		invited_by      TEXT NOT NULL DEFAULT '',
		token_hash      TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'pending',
		resend_count    INTEGER NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// Times are unix milliseconds: sqlite has no native timestamp type and
// integers keep ORDER BY and the expiry comparison exact.
const liteInvitesTable = `
	CREATE TABLE IF NOT EXISTS pinvite_invites (
		id              TEXT PRIMARY KEY,
		type            TEXT NOT NULL DEFAULT 'email',
		email           TEXT NOT NULL,
		role            TEXT NOT NULL DEFAULT '',
		invited_by      TEXT NOT NULL DEFAULT '',
		token_hash      TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'pending',
		resend_count    INTEGER NOT NULL DEFAULT 0,
		created_at      INTEGER NOT NULL,
		expires_at      INTEGER NOT NULL,
		updated_at      INTEGER NOT NULL
	)`

const metadataTable = `
	CREATE TABLE IF NOT EXISTS pinvite_metadata (
		key     TEXT PRIMARY KEY,
		value   TEXT NOT NULL
	)`

// InitSchema creates the invite tables in PostgreSQL.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.exec(ctx, pgInvitesTable); err != nil {
		return fmt.Errorf("failed to create pinvite_invites: %w", err)
	}
	for _, ddl := range indexes {
		if _, err := s.exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	if _, err := s.exec(ctx, metadataTable); err != nil {
		return fmt.Errorf("failed to create pinvite_metadata: %w", err)
	}
	_, err := s.exec(ctx, `
		INSERT INTO pinvite_metadata (key, value) VALUES ('schema_version', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, fmt.Sprint(SchemaVersion))
	return err
}

// SchemaReady reports whether InitSchema has run.
func (s *PostgresStore) SchemaReady(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT to_regclass('pinvite_invites') IS NOT NULL`).Scan(&exists)
	return exists, err
}

// InitSchema creates the invite tables in the sqlite file.
func (s *LiteStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, liteInvitesTable); err != nil {
		return fmt.Errorf("failed to create pinvite_invites: %w", err)
	}
	for _, ddl := range indexes {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, metadataTable); err != nil {
		return fmt.Errorf("failed to create pinvite_metadata: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pinvite_metadata (key, value) VALUES ('schema_version', ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, fmt.Sprint(SchemaVersion))
	return err
}

// SchemaReady reports whether InitSchema has run.
func (s *LiteStore) SchemaReady(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'pinvite_invites'`).Scan(&n)
	return n > 0, err
}
