package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wasteatlas/wasteatlas/internal/adapters/geosource"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
	"github.com/wasteatlas/wasteatlas/internal/pkg/config"
	"github.com/wasteatlas/wasteatlas/internal/pkg/logging"
)

var (
	cfg     *config.Config
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "atlasctl",
	Short: "Inspect and render the MSW waste atlas offline",
	Long:  "Reads the configured generated and recovered datasets, prints their year attributes and legend statistics, and renders map frames and legends as SVG.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load("wasteatlas-atlasctl")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dataDir != "" {
			c.Atlas.DataDir = dataDir
		}
		cfg = c

		// Logs go to stderr so SVG on stdout stays clean.
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), c.Telemetry.ServiceName, c.Log.Level, "text"))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the dataset files (overrides atlas.data_dir)")
}

// atlas is the configured dataset pair installed into a controller.
type atlas struct {
	ctrl     *usecases.SequenceController
	datasets *usecases.DatasetService
	frames   *usecases.FrameService
}

func loadAtlas(ctx context.Context) (*atlas, error) {
	source := geosource.NewRouter(cfg.Atlas.DataDir, time.Duration(cfg.Atlas.HTTPTimeout)*time.Second, nil)
	ctrl := usecases.NewSequenceController(nil)
	datasets := usecases.NewDatasetService(usecases.NewLoader(source), ctrl, nil, cfg.Atlas.Generated, cfg.Atlas.Recovered)
	if err := datasets.Reload(ctx); err != nil {
		return nil, err
	}
	return &atlas{
		ctrl:     ctrl,
		datasets: datasets,
		frames:   usecases.NewFrameService(ctrl, nil, 0),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
