package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/wasteatlas/wasteatlas/internal/adapters/geosource"
	natsadapter "github.com/wasteatlas/wasteatlas/internal/adapters/nats"
	"github.com/wasteatlas/wasteatlas/internal/adapters/postgres"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
	"github.com/wasteatlas/wasteatlas/internal/pkg/config"
	"github.com/wasteatlas/wasteatlas/internal/pkg/logging"
	"github.com/wasteatlas/wasteatlas/internal/workflows"
)

const refreshWorkflowID = "wasteatlas-dataset-refresh"

func main() {
	cfg, err := config.Load("wasteatlas-refresher")
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

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, refreshed datasets will not be announced", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities. Store sources are excluded so a
	// refresh always reads from the origin.
	w.RegisterWorkflow(workflows.DatasetRefreshWorkflow)
	w.RegisterActivity(&workflows.RefreshActivities{
		Loader:    usecases.NewLoader(geosource.NewRouter(cfg.Atlas.DataDir, time.Duration(cfg.Atlas.HTTPTimeout)*time.Second, nil)),
		Repo:      postgres.NewDatasetRepo(db),
		Publisher: publisher,
	})

	if cfg.Temporal.RefreshInterval > 0 {
		opts := client.StartWorkflowOptions{
			ID:           refreshWorkflowID,
			TaskQueue:    cfg.Temporal.TaskQueue,
			CronSchedule: fmt.Sprintf("@every %ds", cfg.Temporal.RefreshInterval),
		}
		input := workflows.RefreshInput{Generated: cfg.Atlas.Generated, Recovered: cfg.Atlas.Recovered}
		run, err := c.ExecuteWorkflow(ctx, opts, workflows.DatasetRefreshWorkflow, input)
		if err != nil {
			// Usually the schedule is already running from a previous start.
			slog.Warn("refresh schedule not started", "workflow_id", refreshWorkflowID, "error", err)
		} else {
			slog.Info("refresh schedule started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "schedule", opts.CronSchedule)
		}
	}

	slog.Info("refresher worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
