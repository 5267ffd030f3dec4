package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

var statsAttribute string

var statsCmd = &cobra.Command{
	Use:   "stats [dataset]",
	Short: "Print legend statistics per year",
	Long:  "Loads the configured datasets and prints min, mean (midpoint of min and max), max and value count for every year, or for --attribute only.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadAtlas(cmd.Context())
		if err != nil {
			return err
		}

		datasets := a.ctrl.Datasets()
		if len(args) == 1 {
			ds, err := a.datasets.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			datasets = []*domain.Dataset{ds}
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("DATASET", "YEAR", "ATTRIBUTE", "MIN", "MEAN", "MAX", "COUNT")
		for _, ds := range datasets {
			attrs := ds.Attributes
			if statsAttribute != "" {
				attrs = []string{statsAttribute}
			}
			for _, attr := range attrs {
				s, err := a.datasets.Stats(cmd.Context(), ds.Name, attr)
				if err != nil {
					return err
				}
				t.Row(ds.Name, domain.ParseYear(attr), attr,
					domain.RoundLabel(s.Min), domain.RoundLabel(s.Mean), domain.RoundLabel(s.Max),
					strconv.Itoa(s.Count))
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsAttribute, "attribute", "", "only this attribute key, e.g. MSW_2010")
	rootCmd.AddCommand(statsCmd)
}
