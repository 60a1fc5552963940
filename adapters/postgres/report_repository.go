package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sentinel/domain/core"
	"sentinel/domain/report"
	"sentinel/ports"

	"github.com/jmoiron/sqlx"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// Save persists a report document as JSONB alongside its score
func (r *reportRepository) Save(ctx context.Context, stored *report.Stored) error {
	document, err := json.Marshal(stored.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal report document: %w", err)
	}

	query := `INSERT INTO reports (id, dataset_id, document, score, created_at)
	VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query,
		stored.ID, stored.DatasetID, document, stored.Score, stored.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by its ID
func (r *reportRepository) GetByID(ctx context.Context, id core.ReportID) (*report.Stored, error) {
	query := `SELECT id, dataset_id, document, score, created_at FROM reports WHERE id = $1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, id))
}

// GetLatestByDataset returns the most recent report for a dataset
func (r *reportRepository) GetLatestByDataset(ctx context.Context, datasetID core.DatasetID) (*report.Stored, error) {
	query := `SELECT id, dataset_id, document, score, created_at
	FROM reports WHERE dataset_id = $1
	ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, datasetID))
}

// ListByDataset returns reports for a dataset, newest first
func (r *reportRepository) ListByDataset(ctx context.Context, datasetID core.DatasetID, limit int) ([]*report.Stored, error) {
	query := `SELECT id, dataset_id, document, score, created_at
	FROM reports WHERE dataset_id = $1
	ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, datasetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*report.Stored
	for rows.Next() {
		stored, err := scanStored(rows.Scan)
		if err != nil {
			return nil, err
		}
		reports = append(reports, stored)
	}
	return reports, rows.Err()
}

// DeleteByDataset removes all reports belonging to a dataset
func (r *reportRepository) DeleteByDataset(ctx context.Context, datasetID core.DatasetID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE dataset_id = $1`, datasetID); err != nil {
		return fmt.Errorf("failed to delete reports: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *reportRepository) scanOne(row rowScanner) (*report.Stored, error) {
	stored, err := scanStored(row.Scan)
	if err == sql.ErrNoRows {
		return nil, core.ErrReportNotFound
	}
	return stored, err
}

func scanStored(scan func(dest ...interface{}) error) (*report.Stored, error) {
	var (
		stored   report.Stored
		document []byte
		created  time.Time
	)
	if err := scan(&stored.ID, &stored.DatasetID, &document, &stored.Score, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	stored.CreatedAt = created

	if len(document) > 0 {
		stored.Document = &report.Report{}
		if err := json.Unmarshal(document, stored.Document); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report document: %w", err)
		}
	}
	return &stored, nil
}
