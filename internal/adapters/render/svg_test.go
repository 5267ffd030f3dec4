package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteatlas/wasteatlas/internal/adapters/render"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

func TestLegend(t *testing.T) {
	stats := domain.LegendStats{Min: 4, Mean: 10, Max: 16, Count: 3}
	lg := domain.BuildLegend("generated", stats, domain.GeneratedProfile, "MSW_2010")

	var b strings.Builder
	require.NoError(t, render.Legend(&b, lg, domain.GeneratedProfile))
	out := b.String()

	assert.Contains(t, out, `width="110" height="70"`)
	assert.Contains(t, out, `id="max"`)
	assert.Contains(t, out, `id="mean"`)
	assert.Contains(t, out, `id="min"`)
	assert.Contains(t, out, `cx="30.00"`)
	assert.Contains(t, out, `x="65.00" y="30.00">16</text>`)
	assert.Contains(t, out, `fill="#CE7816"`)
	assert.Equal(t, 3, strings.Count(out, "<circle"))
}

func TestLegendEmpty(t *testing.T) {
	lg := domain.BuildLegend("generated", domain.LegendStats{}, domain.GeneratedProfile, "MSW_2010")
	var b strings.Builder
	require.NoError(t, render.Legend(&b, lg, domain.GeneratedProfile))
	assert.NotContains(t, b.String(), "<circle")
}

func TestFrame(t *testing.T) {
	f := &domain.Frame{
		Year: "2010",
		Layers: []domain.LayerFrame{
			{
				Name: "generated", Visible: true, Style: domain.GeneratedProfile,
				Markers: []domain.Marker{
					{Country: "Small", Location: domain.GeoPoint{Lon: 0, Lat: 0}, Radius: 3, Popup: domain.Popup{Title: "Small (2010)"}},
					{Country: "Big", Location: domain.GeoPoint{Lon: 1, Lat: 1}, Radius: 9, Popup: domain.Popup{Title: "Big (2010)"}},
					{Country: "None", Radius: 0},
				},
				Legend: domain.Legend{Title: "Waste Generated (kg/capita) in 2010"},
			},
			{
				Name: "recovered", Visible: false, Style: domain.RecoveredProfile,
				Markers: []domain.Marker{{Country: "Hidden", Radius: 5}},
			},
		},
	}

	var b strings.Builder
	err := render.Frame(&b, f, render.View{Width: 800, Height: 600, Zoom: 3})
	require.NoError(t, err)
	out := b.String()

	assert.Contains(t, out, ">2010</text>")
	assert.Contains(t, out, `cx="400.00" cy="300.00" r="3.00"`)
	assert.NotContains(t, out, "#006FFF")
	assert.NotContains(t, out, "None")
	assert.Less(t, strings.Index(out, "Big (2010)"), strings.Index(out, "Small (2010)"))
	assert.Contains(t, out, "Waste Generated (kg/capita) in 2010")
}
