package domain

import "time"

// DatasetKind distinguishes the two waste datasets shown on the map.
type DatasetKind string

const (
	KindGenerated DatasetKind = "generated"
	KindRecovered DatasetKind = "recovered"
)

// Valid reports whether k is a known dataset kind.
func (k DatasetKind) Valid() bool {
	return k == KindGenerated || k == KindRecovered
}

// DatasetSpec describes where a dataset comes from and how to read it.
type DatasetSpec struct {
	Name   string      `json:"name" yaml:"name" mapstructure:"name"`
	Kind   DatasetKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Source string      `json:"source" yaml:"source" mapstructure:"source"` // file path, URL, or stored dataset name
	Marker string      `json:"marker" yaml:"marker" mapstructure:"marker"` // substring selecting year attributes, e.g. "MSW"
}

// Value is an optional numeric property value. Missing, null and
// non-numeric source values are not Present.
type Value struct {
	Number  float64 `json:"number"`
	Present bool    `json:"present"`
}

// Num returns a present value.
func Num(v float64) Value {
	return Value{Number: v, Present: true}
}

// Feature is one country's record in a dataset.
type Feature struct {
	ID       string           `json:"id"`
	Country  string           `json:"country"`
	Location GeoPoint         `json:"location"`
	Keys     []string         `json:"keys"` // property keys in source order
	Values   map[string]Value `json:"values"`
}

// Value returns the feature's value for an attribute key.
func (f *Feature) Value(key string) Value {
	if f.Values == nil {
		return Value{}
	}
	return f.Values[key]
}

// Dataset is an ordered collection of features sharing one schema.
type Dataset struct {
	Name       string      `json:"name"`
	Kind       DatasetKind `json:"kind"`
	Marker     string      `json:"marker"`
	Source     string      `json:"source,omitempty"`
	Features   []Feature   `json:"features"`
	Attributes []string    `json:"attributes"`
	LoadedAt   time.Time   `json:"loaded_at"`
}

// NewDataset builds a dataset and derives its year attributes from the
// first feature's property keys.
func NewDataset(spec DatasetSpec, features []Feature) (*Dataset, error) {
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	return &Dataset{
		Name:       spec.Name,
		Kind:       spec.Kind,
		Marker:     spec.Marker,
		Source:     spec.Source,
		Features:   features,
		Attributes: ExtractAttributes(features[0].Keys, spec.Marker),
		LoadedAt:   time.Now(),
	}, nil
}

// Years returns the parsed year for every attribute, in order.
func (d *Dataset) Years() []string {
	years := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		years[i] = ParseYear(a)
	}
	return years
}

// DatasetSummary is the list view of a dataset.
type DatasetSummary struct {
	Name       string      `json:"name"`
	Kind       DatasetKind `json:"kind"`
	Features   int         `json:"features"`
	Attributes []string    `json:"attributes"`
	LoadedAt   time.Time   `json:"loaded_at"`
}

// Summary returns the list view of d.
func (d *Dataset) Summary() DatasetSummary {
	return DatasetSummary{
		Name:       d.Name,
		Kind:       d.Kind,
		Features:   len(d.Features),
		Attributes: d.Attributes,
		LoadedAt:   d.LoadedAt,
	}
}

// Popup is the hover content attached to a marker.
type Popup struct {
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	OffsetY float64 `json:"offset_y"`
	Class   string  `json:"class"`
}

// Marker is a rendered circle for one feature of one dataset.
type Marker struct {
	FeatureID string   `json:"feature_id"`
	Country   string   `json:"country"`
	Location  GeoPoint `json:"location"`
	Attribute string   `json:"attribute"` // attribute the radius was last computed from
	Value     Value    `json:"value"`
	Radius    float64  `json:"radius"`
	Popup     Popup    `json:"popup"`
}

// LegendStats are the reference values of a legend.
type LegendStats struct {
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"` // midpoint of min and max
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Empty reports whether no value contributed to the stats.
func (s LegendStats) Empty() bool {
	return s.Count == 0
}

// LegendCircle is one reference circle of a legend.
type LegendCircle struct {
	Name   string  `json:"name"` // max, mean, min
	Value  float64 `json:"value"`
	Radius float64 `json:"radius"`
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	LabelX float64 `json:"label_x"`
	LabelY float64 `json:"label_y"`
	Label  string  `json:"label"`
}

// Legend is the temporal + attribute legend of one layer.
type Legend struct {
	Dataset   string         `json:"dataset"`
	Attribute string         `json:"attribute"`
	Title     string         `json:"title"`
	Stats     LegendStats    `json:"stats"`
	Circles   []LegendCircle `json:"circles"`
}

// LayerFrame is the renderable state of one overlay layer.
type LayerFrame struct {
	Name      string       `json:"name"`
	Overlay   string       `json:"overlay"`
	Visible   bool         `json:"visible"`
	Attribute string       `json:"attribute"`
	Style     StyleProfile `json:"style"`
	Markers   []Marker     `json:"markers"`
	Legend    Legend       `json:"legend"`
}

// Frame is a snapshot of the whole map for one sequence position.
type Frame struct {
	Generation uint64        `json:"generation"`
	Sequence   SequenceState `json:"sequence"`
	Year       string        `json:"year"`
	Layers     []LayerFrame  `json:"layers"`
}

// SequenceEvent is published after every sequence transition.
type SequenceEvent struct {
	Generation uint64        `json:"generation"`
	Action     string        `json:"action"` // forward, reverse, set, reload
	Sequence   SequenceState `json:"sequence"`
	Year       string        `json:"year"`
	At         time.Time     `json:"at"`
}
