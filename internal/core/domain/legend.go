package domain

// Legend geometry, in SVG user units.
const (
	LegendWidth   = 110
	LegendHeight  = 70
	LegendCircleX = 30
	LegendBaseY   = 59
	LegendLabelX  = 65
)

var legendRows = []struct {
	name   string
	labelY float64
	pick   func(LegendStats) float64
}{
	{"max", 30, func(s LegendStats) float64 { return s.Max }},
	{"mean", 50, func(s LegendStats) float64 { return s.Mean }},
	{"min", 70, func(s LegendStats) float64 { return s.Min }},
}

// BuildLegend lays out the reference circles for stats. Each circle sits
// on the common baseline, so its centre is raised by its own radius.
// Empty stats produce a legend without circles.
func BuildLegend(dataset string, stats LegendStats, profile StyleProfile, key string) Legend {
	lg := Legend{
		Dataset:   dataset,
		Attribute: key,
		Title:     LegendTitle(profile, key),
		Stats:     stats,
	}
	if stats.Empty() {
		return lg
	}

	lg.Circles = make([]LegendCircle, 0, len(legendRows))
	for _, row := range legendRows {
		v := row.pick(stats)
		r := Radius(v)
		lg.Circles = append(lg.Circles, LegendCircle{
			Name:   row.name,
			Value:  v,
			Radius: r,
			CX:     LegendCircleX,
			CY:     LegendBaseY - r,
			LabelX: LegendLabelX,
			LabelY: row.labelY,
			Label:  RoundLabel(v),
		})
	}
	return lg
}
