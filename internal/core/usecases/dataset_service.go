package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/pkg/telemetry"
)

// DatasetService loads the configured dataset pair into the atlas and
// answers catalogue queries.
type DatasetService struct {
	loader    *Loader
	ctrl      *SequenceController
	repo      ports.DatasetRepository
	generated domain.DatasetSpec
	recovered domain.DatasetSpec

	mu      sync.Mutex
	lastErr error
}

// NewDatasetService creates a new DatasetService. repo may be nil; when
// set, every successful load is also persisted.
func NewDatasetService(
	loader *Loader,
	ctrl *SequenceController,
	repo ports.DatasetRepository,
	generated, recovered domain.DatasetSpec,
) *DatasetService {
	return &DatasetService{
		loader:    loader,
		ctrl:      ctrl,
		repo:      repo,
		generated: generated,
		recovered: recovered,
	}
}

// Reload loads both datasets, generated first, and installs them.
func (s *DatasetService) Reload(ctx context.Context) error {
	ctx, span := telemetry.Tracer("wasteatlas/usecases").Start(ctx, telemetry.SpanDatasetReload)
	defer span.End()

	err := s.loader.LoadPair(ctx, s.generated, s.recovered, func(gen, rec *domain.Dataset) error {
		if s.repo != nil {
			for _, ds := range []*domain.Dataset{gen, rec} {
				if err := s.repo.Upsert(ctx, ds); err != nil {
					slog.WarnContext(ctx, "persist dataset", "dataset", ds.Name, "error", err)
				}
			}
		}
		span.SetAttributes(attribute.Int("atlas.features", len(gen.Features)+len(rec.Features)))
		return s.ctrl.Install(ctx, gen, rec)
	})

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// LastError is the outcome of the most recent Reload. A failed reload
// keeps the previously installed datasets on the map.
func (s *DatasetService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Specs returns the configured generated and recovered dataset specs.
func (s *DatasetService) Specs() (generated, recovered domain.DatasetSpec) {
	return s.generated, s.recovered
}

// List returns the installed datasets.
func (s *DatasetService) List(ctx context.Context) ([]domain.DatasetSummary, error) {
	datasets := s.ctrl.Datasets()
	out := make([]domain.DatasetSummary, len(datasets))
	for i, ds := range datasets {
		out[i] = ds.Summary()
	}
	return out, nil
}

// Get returns an installed dataset by name.
func (s *DatasetService) Get(ctx context.Context, name string) (*domain.Dataset, error) {
	for _, ds := range s.ctrl.Datasets() {
		if ds.Name == name {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, domain.ErrDatasetNotFound)
}

// Stats returns the legend statistics of a dataset for attribute, or for
// the currently selected one when attribute is empty.
func (s *DatasetService) Stats(ctx context.Context, name, attr string) (domain.LegendStats, error) {
	var stats domain.LegendStats
	err := s.withLayer(name, func(l *Layer) error {
		key, err := resolveAttribute(l, attr)
		if err != nil {
			return err
		}
		stats = l.ComputeStats(key)
		return nil
	})
	return stats, err
}

// Legend returns the legend of a dataset for attribute, or for the
// currently selected one when attribute is empty.
func (s *DatasetService) Legend(ctx context.Context, name, attr string) (domain.Legend, error) {
	var lg domain.Legend
	err := s.withLayer(name, func(l *Layer) error {
		key, err := resolveAttribute(l, attr)
		if err != nil {
			return err
		}
		lg = l.BuildLegend(key)
		return nil
	})
	return lg, err
}

// MarkerAt hit-tests the dataset's markers at (lon, lat) and zoom.
func (s *DatasetService) MarkerAt(ctx context.Context, name string, lon, lat float64, zoom int) (*domain.Marker, error) {
	var found *domain.Marker
	err := s.withLayer(name, func(l *Layer) error {
		if m := l.MarkerAt(lon, lat, zoom); m != nil {
			cp := *m
			found = &cp
		}
		return nil
	})
	return found, err
}

func (s *DatasetService) withLayer(name string, fn func(*Layer) error) error {
	err := s.ctrl.WithLayer(name, fn)
	if errors.Is(err, domain.ErrLayerNotFound) {
		return fmt.Errorf("%s: %w", name, domain.ErrDatasetNotFound)
	}
	return err
}

func resolveAttribute(l *Layer, attr string) (string, error) {
	if attr == "" {
		return l.Attribute, nil
	}
	for _, a := range l.Dataset.Attributes {
		if a == attr {
			return attr, nil
		}
	}
	return "", fmt.Errorf("%s has no attribute %q: %w", l.Name(), attr, domain.ErrMissingAttributeValue)
}
