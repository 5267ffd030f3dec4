package geosource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// DefaultMaxBody caps a downloaded dataset.
const DefaultMaxBody = 64 << 20

// ErrDatasetTooLarge is returned when a document exceeds MaxBody.
var ErrDatasetTooLarge = errors.New("dataset too large")

// HTTPSource downloads datasets over HTTP.
type HTTPSource struct {
	client  *http.Client
	MaxBody int64
}

// NewHTTPSource creates an HTTPSource with the given request timeout.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	return &HTTPSource{client: &http.Client{Timeout: timeout}, MaxBody: DefaultMaxBody}
}

// Load implements ports.DatasetSource.
func (s *HTTPSource) Load(ctx context.Context, spec domain.DatasetSpec) ([]domain.Feature, error) {
	data, err := s.Fetch(ctx, spec.Source)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Fetch downloads the raw document at url.
func (s *HTTPSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	limit := s.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("fetch %s: %w: exceeds %d bytes", url, ErrDatasetTooLarge, limit)
	}
	return data, nil
}
