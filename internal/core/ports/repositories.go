package ports

import (
	"context"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// DatasetSource reads the features of one dataset from its origin
// (file, HTTP endpoint or database).
type DatasetSource interface {
	Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error)
}

// DatasetRepository persists datasets.
type DatasetRepository interface {
	Upsert(ctx context.Context, ds *domain.Dataset) error
	GetByName(ctx context.Context, name string) (*domain.Dataset, error)
	List(ctx context.Context) ([]domain.DatasetSummary, error)
	Delete(ctx context.Context, name string) error
}
