package domain

import "math"

// ComputeStats scans present values for min and max. Mean is the midpoint
// (max+min)/2 of the range, not the arithmetic average of the values.
func ComputeStats(values []Value) LegendStats {
	min, max := math.Inf(1), math.Inf(-1)
	count := 0
	for _, v := range values {
		if !v.Present || math.IsNaN(v.Number) {
			continue
		}
		if v.Number < min {
			min = v.Number
		}
		if v.Number > max {
			max = v.Number
		}
		count++
	}
	if count == 0 {
		return LegendStats{}
	}
	return LegendStats{
		Min:   min,
		Mean:  (max + min) / 2,
		Max:   max,
		Count: count,
	}
}
