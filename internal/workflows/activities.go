package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
)

// Activity names registered by RefreshActivities.
const (
	ActivityLoadDataset   = "LoadDataset"
	ActivityStoreDataset  = "StoreDataset"
	ActivityPublishReload = "PublishReload"
)

// RefreshActivities holds the activity implementations for the dataset
// refresh workflow.
type RefreshActivities struct {
	Loader    *usecases.Loader
	Repo      ports.DatasetRepository
	Publisher ports.EventPublisher
}

// LoadDataset reads one dataset from its source. A source that parses but
// yields no features or no year attributes will not improve on retry.
func (a *RefreshActivities) LoadDataset(ctx context.Context, spec domain.DatasetSpec) (*domain.Dataset, error) {
	ds, err := a.Loader.Load(ctx, spec)
	if err != nil {
		if errors.Is(err, domain.ErrNoFeatures) || errors.Is(err, domain.ErrNoAttributes) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidDataset", err)
		}
		return nil, err
	}
	return ds, nil
}

// StoreDataset replaces the stored copy of a dataset.
func (a *RefreshActivities) StoreDataset(ctx context.Context, ds *domain.Dataset) error {
	if err := a.Repo.Upsert(ctx, ds); err != nil {
		return fmt.Errorf("store dataset %s: %w", ds.Name, err)
	}
	slog.InfoContext(ctx, "dataset stored", "dataset", ds.Name, "features", len(ds.Features))
	return nil
}

// PublishReload asks every API instance to reload the named datasets.
func (a *RefreshActivities) PublishReload(ctx context.Context, names []string) error {
	if a.Publisher == nil {
		slog.WarnContext(ctx, "reload not published, no publisher configured", "datasets", names)
		return nil
	}
	if err := a.Publisher.PublishDatasetsReload(ctx, names); err != nil {
		return fmt.Errorf("publish reload: %w", err)
	}
	return nil
}
