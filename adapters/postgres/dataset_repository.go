package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"sentinel/domain/core"
	"sentinel/domain/dataset"
	"sentinel/ports"

	"github.com/jmoiron/sqlx"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

const datasetColumns = `
	id, original_filename, file_path, file_size, file_type,
	COALESCE(file_hash, '') AS file_hash,
	COALESCE(target_column, '') AS target_column,
	COALESCE(record_count, 0) AS record_count,
	COALESCE(field_count, 0) AS field_count,
	status, COALESCE(error_message, '') AS error_message,
	created_at, updated_at`

// Create inserts a new dataset into the database
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	query := `INSERT INTO datasets (
		id, original_filename, file_path, file_size, file_type, file_hash, target_column,
		record_count, field_count, status, error_message, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		ds.ID, ds.OriginalFilename, ds.FilePath, ds.FileSize, ds.FileType, ds.FileHash, ds.TargetColumn,
		ds.RecordCount, ds.FieldCount, ds.Status, ds.ErrorMessage, ds.CreatedAt, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	query := `SELECT` + datasetColumns + ` FROM datasets WHERE id = $1`

	var ds dataset.Dataset
	if err := r.db.GetContext(ctx, &ds, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return &ds, nil
}

// List retrieves datasets ordered by recency with pagination
func (r *datasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	query := `SELECT` + datasetColumns + ` FROM datasets
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	var datasets []*dataset.Dataset
	if err := r.db.SelectContext(ctx, &datasets, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return datasets, nil
}

// Update modifies an existing dataset
func (r *datasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	query := `UPDATE datasets SET
		original_filename = $2, file_path = $3, file_size = $4, file_type = $5,
		file_hash = $6, target_column = $7, record_count = $8, field_count = $9,
		status = $10, error_message = $11, updated_at = $12
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		ds.ID, ds.OriginalFilename, ds.FilePath, ds.FileSize, ds.FileType,
		ds.FileHash, ds.TargetColumn, ds.RecordCount, ds.FieldCount, ds.Status,
		ds.ErrorMessage, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.ErrDatasetNotFound
	}
	return nil
}

// Delete removes a dataset from the database
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.ErrDatasetNotFound
	}
	return nil
}

// UpdateStatus transitions a dataset's processing state
func (r *datasetRepository) UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMsg string) error {
	query := `UPDATE datasets SET status = $2, error_message = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to update dataset status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.ErrDatasetNotFound
	}
	return nil
}

// ListByStatus retrieves all datasets in the given processing state
func (r *datasetRepository) ListByStatus(ctx context.Context, status dataset.Status) ([]*dataset.Dataset, error) {
	query := `SELECT` + datasetColumns + ` FROM datasets WHERE status = $1 ORDER BY created_at ASC`

	var datasets []*dataset.Dataset
	if err := r.db.SelectContext(ctx, &datasets, query, status); err != nil {
		return nil, fmt.Errorf("failed to list datasets by status: %w", err)
	}
	return datasets, nil
}
