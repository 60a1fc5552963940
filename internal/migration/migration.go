package migration

import (
	"context"

	"sentinel/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create datasets table")
	}
	if err := r.createReportsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create reports table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createDatasetsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS datasets (
		id UUID PRIMARY KEY,
		original_filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_size BIGINT NOT NULL DEFAULT 0,
		file_type TEXT NOT NULL DEFAULT 'csv',
		file_hash TEXT,
		target_column TEXT,
		record_count INTEGER,
		field_count INTEGER,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createReportsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY,
		dataset_id UUID NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		document JSONB NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_datasets_status ON datasets(status)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_dataset_id ON reports(dataset_id, created_at DESC)`,
	}
	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
