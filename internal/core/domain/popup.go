package domain

import (
	"fmt"
	"math"
	"strconv"
)

// MissingValueText is shown in place of an absent value.
const MissingValueText = "n/a"

// FormatPopup builds the popup of a feature for one attribute key.
func FormatPopup(f *Feature, key string, profile StyleProfile) Popup {
	year := ParseYear(key)
	v := f.Value(key)

	text := MissingValueText
	radius := 0.0
	if v.Present {
		text = FormatNumber(v.Number)
		radius = Radius(v.Number)
	}

	return Popup{
		Title:   fmt.Sprintf("%s (%s)", f.Country, year),
		Body:    fmt.Sprintf("%s (%s): %s %s", profile.ValueLabel, year, text, profile.Unit),
		OffsetY: -radius,
		Class:   profile.PopupClass,
	}
}

// LegendTitle returns the legend heading for an attribute key.
func LegendTitle(profile StyleProfile, key string) string {
	return fmt.Sprintf("%s in %s", profile.LegendTitle, ParseYear(key))
}

// FormatNumber prints v with the fewest digits that round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RoundLabel rounds v to two decimals for legend labels.
func RoundLabel(v float64) string {
	return FormatNumber(math.Round(v*100) / 100)
}
