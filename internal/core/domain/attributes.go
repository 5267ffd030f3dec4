package domain

import (
	"sort"
	"strconv"
	"strings"
)

// ExtractAttributes returns the keys containing marker, ordered by the
// year parsed from each key. Keys without a numeric year keep their
// source order after the dated ones.
func ExtractAttributes(keys []string, marker string) []string {
	attrs := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.Contains(k, marker) {
			attrs = append(attrs, k)
		}
	}

	sort.SliceStable(attrs, func(i, j int) bool {
		yi, okI := yearNumber(attrs[i])
		yj, okJ := yearNumber(attrs[j])
		switch {
		case okI && okJ:
			return yi < yj
		case okI:
			return true
		default:
			return false
		}
	})
	return attrs
}

// ParseYear returns the second "_"-separated segment of an attribute key,
// e.g. "MSWKgPerCapita_2010" -> "2010". It returns "" when there is none.
func ParseYear(attribute string) string {
	parts := strings.Split(attribute, "_")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func yearNumber(attribute string) (int, bool) {
	y, err := strconv.Atoi(ParseYear(attribute))
	if err != nil {
		return 0, false
	}
	return y, true
}
