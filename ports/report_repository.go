package ports

import (
	"context"

	"sentinel/domain/core"
	"sentinel/domain/report"
)

// ReportRepository defines the interface for persisted analysis reports
type ReportRepository interface {
	Save(ctx context.Context, stored *report.Stored) error
	GetByID(ctx context.Context, id core.ReportID) (*report.Stored, error)

	// GetLatestByDataset returns the most recent report for a dataset.
	GetLatestByDataset(ctx context.Context, datasetID core.DatasetID) (*report.Stored, error)
	ListByDataset(ctx context.Context, datasetID core.DatasetID, limit int) ([]*report.Stored, error)
	DeleteByDataset(ctx context.Context, datasetID core.DatasetID) error
}
