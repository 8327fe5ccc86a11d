package migration

import (
	"context"

	"godesign/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the draw archive schema. Statements are kept to
// the subset of SQL shared by PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every step is
// idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDrawsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create draws table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createDrawsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS draws (
			id VARCHAR(36) PRIMARY KEY,
			design VARCHAR(255) NOT NULL,
			replicate INTEGER NOT NULL DEFAULT 0,
			seed BIGINT NOT NULL,
			n INTEGER,
			frac DOUBLE PRECISION,
			row_count INTEGER NOT NULL,
			columns TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_draws_design_created_at ON draws (design, created_at)
	`)
	return err
}
