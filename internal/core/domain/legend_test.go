package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

func TestBuildLegendGeometry(t *testing.T) {
	stats := domain.LegendStats{Min: 4, Mean: 10, Max: 16, Count: 5}
	lg := domain.BuildLegend("generated", stats, domain.GeneratedProfile, "MSW_2010")

	assert.Equal(t, "Waste Generated (kg/capita) in 2010", lg.Title)
	require.Len(t, lg.Circles, 3)

	names := []string{"max", "mean", "min"}
	values := []float64{16, 10, 4}
	labelY := []float64{30, 50, 70}
	for i, c := range lg.Circles {
		assert.Equal(t, names[i], c.Name)
		assert.Equal(t, values[i], c.Value)
		assert.InDelta(t, domain.Radius(values[i]), c.Radius, 1e-12)
		assert.Equal(t, 30.0, c.CX)
		assert.InDelta(t, 59-c.Radius, c.CY, 1e-12)
		assert.Equal(t, 65.0, c.LabelX)
		assert.Equal(t, labelY[i], c.LabelY)
	}
	assert.Equal(t, "16", lg.Circles[0].Label)
}

func TestBuildLegendEmpty(t *testing.T) {
	lg := domain.BuildLegend("recovered", domain.LegendStats{}, domain.RecoveredProfile, "MSW_2010")
	assert.Empty(t, lg.Circles)
	assert.Equal(t, "Waste Recycled or Composted (%) in 2010", lg.Title)
}
