package usecases

import "github.com/wasteatlas/wasteatlas/internal/core/domain"

// ComputeStats scans the layer's features for key. Absent values are
// excluded, so a missing year never corrupts min or max.
func (l *Layer) ComputeStats(key string) domain.LegendStats {
	return domain.ComputeStats(l.Values(key))
}

// BuildLegend lays out the layer's legend for key.
func (l *Layer) BuildLegend(key string) domain.Legend {
	return domain.BuildLegend(l.Name(), l.ComputeStats(key), l.Profile, key)
}

// RefreshLegend recomputes and stores the legend for key.
func (l *Layer) RefreshLegend(key string) domain.Legend {
	l.Legend = l.BuildLegend(key)
	return l.Legend
}
