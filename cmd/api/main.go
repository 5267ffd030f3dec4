package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/wasteatlas/wasteatlas/internal/adapters/geosource"
	"github.com/wasteatlas/wasteatlas/internal/adapters/http"
	natsadapter "github.com/wasteatlas/wasteatlas/internal/adapters/nats"
	"github.com/wasteatlas/wasteatlas/internal/adapters/postgres"
	"github.com/wasteatlas/wasteatlas/internal/adapters/tiles"
	"github.com/wasteatlas/wasteatlas/internal/adapters/valkey"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
	"github.com/wasteatlas/wasteatlas/internal/pkg/config"
	"github.com/wasteatlas/wasteatlas/internal/pkg/logging"
	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
	"github.com/wasteatlas/wasteatlas/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("wasteatlas-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database (optional dataset store)
	var (
		db   *postgres.DB
		repo ports.DatasetRepository
	)
	if cfg.Database.Enabled {
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo = postgres.NewDatasetRepo(db)
		go reportPoolStats(ctx, db)
	}

	// Cache
	var frameCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		frameCache = cache
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	var natsConn *nats.Conn
	if publisher != nil {
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	// Use cases
	source := geosource.NewRouter(cfg.Atlas.DataDir, time.Duration(cfg.Atlas.HTTPTimeout)*time.Second, repo)
	ctrl := usecases.NewSequenceController(publisher)
	datasets := usecases.NewDatasetService(usecases.NewLoader(source), ctrl, repo, cfg.Atlas.Generated, cfg.Atlas.Recovered)
	frames := usecases.NewFrameService(ctrl, frameCache, cfg.Valkey.FrameTTL)

	// A map with no data is not worth serving.
	if err := datasets.Reload(ctx); err != nil {
		log.Fatalf("load datasets: %v", err)
	}

	// Reload requests from the poller and the refresh workflow
	if publisher != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribeDatasetsReload(ctx, func(ctx context.Context, names []string) error {
				slog.Info("reload requested", "datasets", names)
				return datasets.Reload(ctx)
			})
			if err != nil {
				slog.Warn("subscribe reloads", "error", err)
			}
		}
	}

	if cfg.Sequence.Autoplay {
		go ctrl.Autoplay(ctx, time.Duration(cfg.Sequence.Interval)*time.Millisecond)
	}

	var tileFetcher ports.TileFetcher
	if cfg.Tiles.UpstreamURL != "" {
		tileFetcher = tiles.NewProxy(
			cfg.Tiles.UpstreamURL,
			cfg.Tiles.UserAgent,
			cfg.Map.MinZoom,
			cfg.Map.MaxZoom,
			tiles.NewCache(cfg.Tiles.CacheSize, time.Duration(cfg.Tiles.CacheTTL)*time.Second),
		)
	}

	deps := &http.Dependencies{
		Datasets: datasets,
		Sequence: ctrl,
		Frames:   frames,
		View:     cfg.View(),
		Width:    cfg.Map.Width,
		Height:   cfg.Map.Height,
		Tiles:    tileFetcher,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // requests carry at most a small JSON body
		AppName:      "WasteAtlas API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the database pool gauges until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
