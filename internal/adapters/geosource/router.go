package geosource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
)

// StorePrefix marks a source as a dataset name in the dataset store,
// e.g. "store:generated".
const StorePrefix = "store:"

// Router picks a source from the shape of DatasetSpec.Source: http(s)
// URLs, "store:" names, and file paths for everything else.
type Router struct {
	File  ports.DatasetSource
	HTTP  ports.DatasetSource
	Store ports.DatasetSource
}

// NewRouter wires files under dir and HTTP with timeout. repo may be nil,
// in which case "store:" sources fail.
func NewRouter(dir string, timeout time.Duration, repo ports.DatasetRepository) Router {
	r := Router{
		File: FileSource{Dir: dir},
		HTTP: NewHTTPSource(timeout),
	}
	if repo != nil {
		r.Store = StoreSource{Repo: repo}
	}
	return r
}

// Load implements ports.DatasetSource.
func (r Router) Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
	var src ports.DatasetSource
	switch {
	case strings.HasPrefix(spec.Source, "http://"), strings.HasPrefix(spec.Source, "https://"):
		src = r.HTTP
	case strings.HasPrefix(spec.Source, StorePrefix):
		src = r.Store
	default:
		src = r.File
	}
	if src == nil {
		return nil, fmt.Errorf("no source configured for %q", spec.Source)
	}
	return src.Load(ctx, spec)
}

// StoreSource reads datasets previously saved in a DatasetRepository.
type StoreSource struct {
	Repo ports.DatasetRepository
}

// Load implements ports.DatasetSource.
func (s StoreSource) Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
	name := strings.TrimPrefix(spec.Source, StorePrefix)
	ds, err := s.Repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("stored dataset %s: %w", name, err)
	}
	return ds.Features, nil
}
