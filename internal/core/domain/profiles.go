package domain

// StyleProfile is the fixed look and wording of one overlay layer.
type StyleProfile struct {
	Name        string  `json:"name"`
	Overlay     string  `json:"overlay"`
	FillColor   string  `json:"fill_color"`
	StrokeColor string  `json:"stroke_color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fill_opacity"`
	PopupClass  string  `json:"popup_class"`
	ValueLabel  string  `json:"value_label"`
	Unit        string  `json:"unit"`
	LegendTitle string  `json:"legend_title"`
}

var (
	GeneratedProfile = StyleProfile{
		Name:        string(KindGenerated),
		Overlay:     "Waste Generated",
		FillColor:   "#CE7816",
		StrokeColor: "#AD550D",
		Weight:      1,
		Opacity:     1,
		FillOpacity: 0.8,
		PopupClass:  "gen-popup",
		ValueLabel:  "Municipal Solid Waste",
		Unit:        "kg per capita",
		LegendTitle: "Waste Generated (kg/capita)",
	}

	RecoveredProfile = StyleProfile{
		Name:        string(KindRecovered),
		Overlay:     "Waste Recycled or Composted",
		FillColor:   "#006FFF",
		StrokeColor: "#0026FF",
		Weight:      1,
		Opacity:     1,
		FillOpacity: 0.8,
		PopupClass:  "rec-popup",
		ValueLabel:  "Material Recovered: Recycling/Composting",
		Unit:        "%",
		LegendTitle: "Waste Recycled or Composted (%)",
	}
)

// ProfileFor returns the style profile of a dataset kind.
func ProfileFor(kind DatasetKind) StyleProfile {
	if kind == KindRecovered {
		return RecoveredProfile
	}
	return GeneratedProfile
}
