package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
	"github.com/wasteatlas/wasteatlas/internal/pkg/telemetry"
)

// Loader reads datasets from a source.
type Loader struct {
	source ports.DatasetSource
}

// NewLoader creates a new Loader.
func NewLoader(source ports.DatasetSource) *Loader {
	return &Loader{source: source}
}

// Load reads one dataset. Any failure is reported as *domain.LoadFailure.
func (l *Loader) Load(ctx context.Context, spec domain.DatasetSpec) (*domain.Dataset, error) {
	ctx, span := telemetry.Tracer("wasteatlas/usecases").Start(ctx, telemetry.SpanDatasetLoad)
	span.SetAttributes(attribute.String(telemetry.AttrDataset, spec.Name))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.DatasetLoadDuration.WithLabelValues(spec.Name).Observe(time.Since(start).Seconds())
	}()

	fail := func(err error) (*domain.Dataset, error) {
		metrics.DatasetLoads.WithLabelValues(spec.Name, "error").Inc()
		span.RecordError(err)
		return nil, &domain.LoadFailure{Dataset: spec.Name, Source: spec.Source, Err: err}
	}

	features, err := l.source.Load(ctx, spec)
	if err != nil {
		return fail(err)
	}
	ds, err := domain.NewDataset(spec, features)
	if err != nil {
		return fail(err)
	}
	if len(ds.Attributes) == 0 {
		return fail(fmt.Errorf("marker %q: %w", spec.Marker, domain.ErrNoAttributes))
	}

	metrics.DatasetLoads.WithLabelValues(spec.Name, "ok").Inc()
	slog.InfoContext(ctx, "dataset loaded",
		"dataset", spec.Name,
		"features", len(ds.Features),
		"attributes", len(ds.Attributes),
	)
	return ds, nil
}

// LoadPair loads the generated dataset and, only once that succeeded,
// the recovered one. Both are then handed to next.
func (l *Loader) LoadPair(
	ctx context.Context,
	generated, recovered domain.DatasetSpec,
	next func(gen, rec *domain.Dataset) error,
) error {
	gen, err := l.Load(ctx, generated)
	if err != nil {
		return err
	}
	rec, err := l.Load(ctx, recovered)
	if err != nil {
		return err
	}
	return next(gen, rec)
}

// IsLoadFailure reports whether err came from a failed dataset load.
func IsLoadFailure(err error) bool {
	var lf *domain.LoadFailure
	return errors.As(err, &lf)
}
