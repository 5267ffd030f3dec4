package geosource

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"sync"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
)

// Poll results recorded in metrics.SourcePolls.
const (
	PollBaseline  = "baseline"
	PollUnchanged = "unchanged"
	PollChanged   = "changed"
	PollInvalid   = "invalid"
	PollError     = "error"
)

// Watcher detects content changes of remote datasets by hashing each
// download. The first poll of a dataset only records a baseline.
type Watcher struct {
	source *HTTPSource

	mu     sync.Mutex
	hashes map[string][sha256.Size]byte
}

// NewWatcher creates a Watcher that downloads with source.
func NewWatcher(source *HTTPSource) *Watcher {
	return &Watcher{source: source, hashes: make(map[string][sha256.Size]byte)}
}

// Check downloads spec.Source and reports the poll result. Documents that
// no longer decode into features are reported invalid and do not replace
// the baseline.
func (w *Watcher) Check(ctx context.Context, spec domain.DatasetSpec) string {
	result := w.check(ctx, spec)
	metrics.SourcePolls.WithLabelValues(spec.Name, result).Inc()
	return result
}

func (w *Watcher) check(ctx context.Context, spec domain.DatasetSpec) string {
	data, err := w.source.Fetch(ctx, spec.Source)
	if err != nil {
		slog.WarnContext(ctx, "poll failed", "dataset", spec.Name, "error", err)
		return PollError
	}
	sum := sha256.Sum256(data)

	w.mu.Lock()
	prev, seen := w.hashes[spec.Name]
	w.mu.Unlock()
	if seen && prev == sum {
		return PollUnchanged
	}

	if features, err := Decode(data); err != nil || len(features) == 0 {
		slog.WarnContext(ctx, "polled document is not a usable dataset", "dataset", spec.Name, "error", err)
		return PollInvalid
	}

	w.mu.Lock()
	w.hashes[spec.Name] = sum
	w.mu.Unlock()

	if !seen {
		return PollBaseline
	}
	slog.InfoContext(ctx, "dataset changed upstream", "dataset", spec.Name, "bytes", len(data))
	return PollChanged
}
