package ports

import (
	"context"

	"sentinel/domain/core"
	"sentinel/domain/dataset"
)

// DatasetRepository defines the interface for dataset storage operations
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error)
	Update(ctx context.Context, ds *dataset.Dataset) error
	Delete(ctx context.Context, id core.DatasetID) error

	// UpdateStatus transitions a dataset's processing state without touching
	// the rest of the record.
	UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMsg string) error
	ListByStatus(ctx context.Context, status dataset.Status) ([]*dataset.Dataset, error)
}
