package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wasteatlas/wasteatlas/internal/adapters/render"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

var (
	renderIndex  int
	renderOut    string
	renderWidth  int
	renderHeight int
	renderZoom   int

	legendAttribute string
	legendOut       string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map at one year as SVG",
	Long:  "Loads the configured datasets and writes the frame at --index, with proportional symbols, the year label and one legend per layer.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadAtlas(cmd.Context())
		if err != nil {
			return err
		}
		f, err := a.frames.At(cmd.Context(), renderIndex)
		if err != nil {
			return err
		}

		view := render.View{
			Width:  cfg.Map.Width,
			Height: cfg.Map.Height,
			Center: domain.GeoPoint{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
			Zoom:   cfg.Map.Zoom,
		}
		if renderWidth > 0 {
			view.Width = renderWidth
		}
		if renderHeight > 0 {
			view.Height = renderHeight
		}
		if renderZoom > 0 {
			view.Zoom = renderZoom
		}

		return writeOutput(cmd.OutOrStdout(), renderOut, func(w io.Writer) error {
			return render.Frame(w, f, view)
		})
	},
}

var legendCmd = &cobra.Command{
	Use:   "legend <dataset>",
	Short: "Render the legend of one dataset as SVG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadAtlas(cmd.Context())
		if err != nil {
			return err
		}
		ds, err := a.datasets.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		lg, err := a.datasets.Legend(cmd.Context(), args[0], legendAttribute)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), legendOut, func(w io.Writer) error {
			return render.Legend(w, lg, domain.ProfileFor(ds.Kind))
		})
	},
}

// writeOutput writes to path, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	renderCmd.Flags().IntVar(&renderIndex, "index", 0, "sequence index (0 is the first year)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default stdout)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "image width (default map.width)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "image height (default map.height)")
	renderCmd.Flags().IntVar(&renderZoom, "zoom", 0, "zoom level (default map.zoom)")
	rootCmd.AddCommand(renderCmd)

	legendCmd.Flags().StringVar(&legendAttribute, "attribute", "", "attribute key (default the first year)")
	legendCmd.Flags().StringVarP(&legendOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(legendCmd)
}
