package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wasteatlas/wasteatlas/internal/adapters/geosource"
	natsadapter "github.com/wasteatlas/wasteatlas/internal/adapters/nats"
	"github.com/wasteatlas/wasteatlas/internal/pkg/config"
	"github.com/wasteatlas/wasteatlas/internal/pkg/logging"
	"github.com/wasteatlas/wasteatlas/internal/pkg/manifest"
)

// usage: poller [manifest.yaml]
func main() {
	cfg, err := config.Load("wasteatlas-poller")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manifestPath := manifest.DefaultPath
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}
	watched := m.Polled()
	if len(watched) == 0 {
		log.Fatalf("manifest %s has no datasets with poll: true", manifestPath)
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	watcher := geosource.NewWatcher(geosource.NewHTTPSource(time.Duration(cfg.Atlas.HTTPTimeout) * time.Second))

	slog.Info("polling remote datasets", "count", len(watched), "interval", m.PollInterval.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(m.PollInterval)
	defer ticker.Stop()

	// Run once immediately
	pollAll(ctx, watcher, pub, watched)

	for {
		select {
		case <-ticker.C:
			pollAll(ctx, watcher, pub, watched)
		case sig := <-quit:
			slog.Info("shutting down poller", "signal", sig.String())
			cancel()
			return
		}
	}
}

// pollAll checks every watched dataset and publishes one reload for all
// that changed.
func pollAll(ctx context.Context, w *geosource.Watcher, pub *natsadapter.Publisher, entries []manifest.Entry) {
	results := make([]string, len(entries))

	var g errgroup.Group
	g.SetLimit(8) // max 8 concurrent fetches
	for i, e := range entries {
		g.Go(func() error {
			results[i] = w.Check(ctx, e.DatasetSpec)
			return nil
		})
	}
	_ = g.Wait()

	var changed []string
	for i, r := range results {
		if r == geosource.PollChanged {
			changed = append(changed, entries[i].Name)
		}
	}
	if len(changed) == 0 {
		return
	}
	if err := pub.PublishDatasetsReload(ctx, changed); err != nil {
		slog.Error("publish reload", "datasets", changed, "error", err)
		return
	}
	slog.Info("reload published", "datasets", changed)
}
