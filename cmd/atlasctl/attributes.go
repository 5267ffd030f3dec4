package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wasteatlas/wasteatlas/internal/adapters/geosource"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

var attributesMarker string

var attributesCmd = &cobra.Command{
	Use:   "attributes <file.geojson>",
	Short: "List the year attributes of a GeoJSON file",
	Long:  "Decodes a GeoJSON FeatureCollection and prints the property keys of its first feature that contain the marker, in year order.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		features, err := geosource.Decode(data)
		if err != nil {
			return err
		}
		ds, err := domain.NewDataset(domain.DatasetSpec{Name: args[0], Marker: attributesMarker}, features)
		if err != nil {
			return err
		}
		if len(ds.Attributes) == 0 {
			return fmt.Errorf("marker %q: %w", attributesMarker, domain.ErrNoAttributes)
		}

		out := cmd.OutOrStdout()
		for i, a := range ds.Attributes {
			fmt.Fprintf(out, "%d\t%s\t%s\n", i, a, domain.ParseYear(a))
		}
		if n := len(ds.Attributes); n != domain.DefaultSteps {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: %d years, the published datasets have %d\n", n, domain.DefaultSteps)
		}
		return nil
	},
}

func init() {
	attributesCmd.Flags().StringVar(&attributesMarker, "marker", "MSW", "substring selecting year attributes")
	rootCmd.AddCommand(attributesCmd)
}
