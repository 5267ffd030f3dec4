package geosource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// FileSource reads datasets from GeoJSON files. Relative sources resolve
// against Dir.
type FileSource struct {
	Dir string
}

// Load implements ports.DatasetSource.
func (s FileSource) Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
	path := spec.Source
	if !filepath.IsAbs(path) && s.Dir != "" {
		path = filepath.Join(s.Dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}
