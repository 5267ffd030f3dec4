package domain

import "math"

// ScaleFactor scales attribute values before conversion to symbol area.
const ScaleFactor = 1.0

// Radius returns the proportional-symbol radius for a value: the circle's
// area, not its radius, is linear in the value.
func Radius(value float64) float64 {
	area := value * ScaleFactor
	return math.Sqrt(area / math.Pi)
}
