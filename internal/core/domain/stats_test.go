package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

func TestComputeStatsMidpoint(t *testing.T) {
	got := domain.ComputeStats([]domain.Value{domain.Num(2), domain.Num(4), domain.Num(12)})
	assert.Equal(t, domain.LegendStats{Min: 2, Mean: 7, Max: 12, Count: 3}, got)
}

func TestComputeStatsMeanIsMidpointNotAverage(t *testing.T) {
	cases := []struct {
		values []float64
		want   domain.LegendStats
	}{
		{[]float64{5, 10, 15}, domain.LegendStats{Min: 5, Mean: 10, Max: 15, Count: 3}},
		// the arithmetic mean would be 38.33
		{[]float64{5, 10, 100}, domain.LegendStats{Min: 5, Mean: 52.5, Max: 100, Count: 3}},
	}
	for _, tc := range cases {
		vals := make([]domain.Value, len(tc.values))
		for i, v := range tc.values {
			vals[i] = domain.Num(v)
		}
		assert.Equal(t, tc.want, domain.ComputeStats(vals), "values %v", tc.values)
	}
}

func TestComputeStatsSkipsAbsent(t *testing.T) {
	got := domain.ComputeStats([]domain.Value{{}, domain.Num(5), {}, domain.Num(0)})
	assert.Equal(t, domain.LegendStats{Min: 0, Mean: 2.5, Max: 5, Count: 2}, got)
}

func TestComputeStatsEmpty(t *testing.T) {
	got := domain.ComputeStats([]domain.Value{{}, {}})
	assert.True(t, got.Empty())
	assert.Equal(t, domain.LegendStats{}, got)
}
