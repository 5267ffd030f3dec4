package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wasteatlas/wasteatlas/internal/adapters/geosource"
	natsadapter "github.com/wasteatlas/wasteatlas/internal/adapters/nats"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
	"github.com/wasteatlas/wasteatlas/internal/pkg/config"
	"github.com/wasteatlas/wasteatlas/internal/pkg/logging"
)

var (
	logFile = flag.String("debug", "", "write debug logs to file")
	dataDir = flag.String("data-dir", "", "directory holding the dataset files (overrides atlas.data_dir)")
	follow  = flag.Bool("follow", false, "follow sequence changes made through the API over NATS")
)

func main() {
	flag.Parse()

	cfg, err := config.Load("wasteatlas-viewer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dataDir != "" {
		cfg.Atlas.DataDir = *dataDir
	}

	// The terminal belongs to the UI, so logs only go to a file.
	var logOut io.Writer = io.Discard
	level := cfg.Log.Level
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		logOut = f
		level = "debug"
	}
	slog.SetDefault(logging.New(logOut, cfg.Telemetry.ServiceName, level, "text"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := geosource.NewRouter(cfg.Atlas.DataDir, time.Duration(cfg.Atlas.HTTPTimeout)*time.Second, nil)
	ctrl := usecases.NewSequenceController(nil)
	datasets := usecases.NewDatasetService(usecases.NewLoader(source), ctrl, nil, cfg.Atlas.Generated, cfg.Atlas.Recovered)
	if err := datasets.Reload(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(ctx, ctrl), tea.WithAltScreen())

	if *follow {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		defer sub.Close()
		err = sub.SubscribeSequenceChanged(ctx, func(_ context.Context, ev *domain.SequenceEvent) error {
			p.Send(remoteEventMsg(*ev))
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	if _, err := p.Run(); err != nil {
		slog.Error("tea program", "error", err)
		fmt.Println("Error:", err)
	}
}
