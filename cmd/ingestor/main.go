package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wasteatlas/wasteatlas/internal/adapters/geosource"
	natsadapter "github.com/wasteatlas/wasteatlas/internal/adapters/nats"
	"github.com/wasteatlas/wasteatlas/internal/adapters/postgres"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
	"github.com/wasteatlas/wasteatlas/internal/pkg/config"
	"github.com/wasteatlas/wasteatlas/internal/pkg/logging"
	"github.com/wasteatlas/wasteatlas/internal/pkg/manifest"
)

// usage: ingestor [manifest.yaml] [name,name,...]
func main() {
	cfg, err := config.Load("wasteatlas-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	repo := postgres.NewDatasetRepo(db)

	manifestPath := manifest.DefaultPath
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}

	var filter []string
	if len(os.Args) > 2 {
		filter = manifest.SplitNames(os.Args[2])
	}
	entries, err := m.Select(filter)
	if err != nil {
		log.Fatalf("select datasets: %v", err)
	}

	slog.Info("ingesting datasets", "count", len(entries), "source", m.Source, "manifest", manifestPath)

	// No store source: ingestion only reads files and URLs.
	loader := usecases.NewLoader(geosource.NewRouter(cfg.Atlas.DataDir, time.Duration(cfg.Atlas.HTTPTimeout)*time.Second, nil))

	var (
		mu     sync.Mutex
		stored []string
		g      errgroup.Group
	)
	g.SetLimit(4) // max 4 concurrent downloads

	for _, e := range entries {
		g.Go(func() error {
			ds, err := loader.Load(ctx, e.DatasetSpec)
			if err != nil {
				slog.Error("load failed", "dataset", e.Name, "error", err)
				return err
			}
			if err := repo.Upsert(ctx, ds); err != nil {
				slog.Error("store failed", "dataset", e.Name, "error", err)
				return err
			}
			slog.Info("dataset stored",
				"dataset", ds.Name,
				"features", len(ds.Features),
				"years", ds.Years(),
			)
			mu.Lock()
			stored = append(stored, ds.Name)
			mu.Unlock()
			return nil
		})
	}
	failed := g.Wait()

	if len(stored) > 0 {
		notify(ctx, cfg.NATS.URL, stored)
	}
	if failed != nil {
		slog.Error("ingestion finished with errors", "stored", len(stored), "requested", len(entries))
		os.Exit(1)
	}
	slog.Info("ingestion complete", "stored", stored)
}

// notify tells running APIs to reload. A missing broker is not fatal; the
// APIs pick the data up on their next start.
func notify(ctx context.Context, url string, names []string) {
	pub, err := natsadapter.NewPublisher(url)
	if err != nil {
		slog.Warn("nats unavailable, reload not published", "error", err)
		return
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pub.PublishDatasetsReload(ctx, names); err != nil {
		slog.Warn("publish reload", "error", err)
	}
}
