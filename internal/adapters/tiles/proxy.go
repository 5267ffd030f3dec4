// Package tiles proxies basemap raster tiles from an upstream server.
package tiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
)

// ErrInvalidTile is returned for coordinates outside the tile pyramid.
var ErrInvalidTile = errors.New("invalid tile coordinates")

const maxTileBytes = 4 << 20

// Proxy fetches tiles from a URL template such as
// "https://tile.openstreetmap.org/{z}/{x}/{y}.png".
type Proxy struct {
	template  string
	userAgent string
	minZoom   int
	maxZoom   int
	client    *http.Client
	cache     *Cache
}

// NewProxy creates a tile proxy. cache may be nil.
func NewProxy(template, userAgent string, minZoom, maxZoom int, cache *Cache) *Proxy {
	return &Proxy{
		template:  template,
		userAgent: userAgent,
		minZoom:   minZoom,
		maxZoom:   maxZoom,
		client:    &http.Client{Timeout: 15 * time.Second},
		cache:     cache,
	}
}

// URL expands the template for one tile.
func (p *Proxy) URL(z, x, y int) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{s}", "a",
	).Replace(p.template)
}

// Fetch returns the tile body and content type, from cache when possible.
func (p *Proxy) Fetch(ctx context.Context, z, x, y int) ([]byte, string, error) {
	if z < p.minZoom || z > p.maxZoom {
		return nil, "", fmt.Errorf("%w: zoom %d not in [%d,%d]", ErrInvalidTile, z, p.minZoom, p.maxZoom)
	}
	if n := 1 << z; x < 0 || y < 0 || x >= n || y >= n {
		return nil, "", fmt.Errorf("%w: %d/%d/%d", ErrInvalidTile, z, x, y)
	}

	key := fmt.Sprintf("%d/%d/%d", z, x, y)
	if p.cache != nil {
		if data, ct, ok := p.cache.Get(key); ok {
			metrics.TileRequests.WithLabelValues("hit").Inc()
			return data, ct, nil
		}
	}
	metrics.TileRequests.WithLabelValues("miss").Inc()

	url := p.URL(z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build tile request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("tile upstream returned %d for %s", resp.StatusCode, url)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read tile: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = contentTypeFor(url)
	}
	if p.cache != nil {
		p.cache.Put(key, data, ct)
	}

	slog.DebugContext(ctx, "fetched basemap tile", "url", url, "bytes", len(data))
	return data, ct, nil
}

func contentTypeFor(url string) string {
	switch {
	case strings.HasSuffix(url, ".png"):
		return "image/png"
	case strings.HasSuffix(url, ".jpg"), strings.HasSuffix(url, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(url, ".webp"):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
