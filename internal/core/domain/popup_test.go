package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

func TestFormatPopupGenerated(t *testing.T) {
	f := &domain.Feature{
		Country: "Austria",
		Values:  map[string]domain.Value{"MSW_2010": domain.Num(562.5)},
	}
	p := domain.FormatPopup(f, "MSW_2010", domain.GeneratedProfile)

	assert.Equal(t, "Austria (2010)", p.Title)
	assert.Equal(t, "Municipal Solid Waste (2010): 562.5 kg per capita", p.Body)
	assert.InDelta(t, -domain.Radius(562.5), p.OffsetY, 1e-12)
	assert.Equal(t, "gen-popup", p.Class)
}

func TestFormatPopupRecovered(t *testing.T) {
	f := &domain.Feature{
		Country: "Chile",
		Values:  map[string]domain.Value{"MSW_2015": domain.Num(1)},
	}
	p := domain.FormatPopup(f, "MSW_2015", domain.RecoveredProfile)

	assert.Equal(t, "Chile (2015)", p.Title)
	assert.Equal(t, "Material Recovered: Recycling/Composting (2015): 1 %", p.Body)
	assert.Equal(t, "rec-popup", p.Class)
}

func TestFormatPopupMissingValue(t *testing.T) {
	f := &domain.Feature{Country: "Peru"}
	p := domain.FormatPopup(f, "MSW_2015", domain.GeneratedProfile)
	assert.Equal(t, "Municipal Solid Waste (2015): n/a kg per capita", p.Body)
	assert.Equal(t, 0.0, p.OffsetY)
}

func TestFormatPopupBadKey(t *testing.T) {
	f := &domain.Feature{Country: "Peru"}
	p := domain.FormatPopup(f, "MSWtotal", domain.GeneratedProfile)
	assert.Equal(t, "Peru ()", p.Title)
}

func TestLegendTitle(t *testing.T) {
	assert.Equal(t, "Waste Generated (kg/capita) in 2016", domain.LegendTitle(domain.GeneratedProfile, "MSW_2016"))
	assert.Equal(t, "Waste Recycled or Composted (%) in 2000", domain.LegendTitle(domain.RecoveredProfile, "MSW_2000"))
}

func TestRoundLabel(t *testing.T) {
	assert.Equal(t, "3.14", domain.RoundLabel(3.14159))
	assert.Equal(t, "10", domain.RoundLabel(10))
	assert.Equal(t, "0.5", domain.RoundLabel(0.499))
}
