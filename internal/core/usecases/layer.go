package usecases

import (
	"fmt"
	"math"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/pkg/geospatial"
)

// HitSlopPx is added to a marker's radius when hit-testing, so very small
// circles stay hoverable.
const HitSlopPx = 2

// Layer is the overlay group of markers rendered for one dataset.
// It is not safe for concurrent use; SequenceController serialises access.
type Layer struct {
	Dataset   *domain.Dataset
	Profile   domain.StyleProfile
	Visible   bool
	Markers   []domain.Marker
	Attribute string
	Legend    domain.Legend

	index     geospatial.PointIndex
	maxRadius float64
}

// RenderAll creates one marker per feature sized by the first attribute.
// Features without a value for that attribute get radius 0 and an "n/a"
// popup.
func RenderAll(ds *domain.Dataset, attributes []string, profile domain.StyleProfile) (*Layer, error) {
	if len(attributes) == 0 {
		return nil, fmt.Errorf("render %s: %w", ds.Name, domain.ErrNoAttributes)
	}
	key := attributes[0]

	l := &Layer{
		Dataset:   ds,
		Profile:   profile,
		Visible:   true,
		Markers:   make([]domain.Marker, len(ds.Features)),
		Attribute: key,
	}
	for i := range ds.Features {
		f := &ds.Features[i]
		m := domain.Marker{
			FeatureID: f.ID,
			Country:   f.Country,
			Location:  f.Location,
		}
		setMarker(&m, f, key, profile)
		l.Markers[i] = m
		l.index.Insert(f.Location.Lon, f.Location.Lat, i)
	}
	l.refreshMaxRadius()
	l.Legend = l.BuildLegend(key)
	return l, nil
}

// UpdateAll resizes, in place, every marker whose feature has a value for
// key. Markers without one keep their previous radius and popup. It
// returns the number of markers updated.
func (l *Layer) UpdateAll(key string) int {
	n := 0
	for i := range l.Markers {
		f := &l.Dataset.Features[i]
		if !f.Value(key).Present {
			continue
		}
		setMarker(&l.Markers[i], f, key, l.Profile)
		n++
	}
	l.Attribute = key
	l.refreshMaxRadius()
	return n
}

// Name is the dataset name the layer is registered under.
func (l *Layer) Name() string {
	return l.Dataset.Name
}

// Values returns every feature's value for key, in feature order.
func (l *Layer) Values(key string) []domain.Value {
	out := make([]domain.Value, len(l.Dataset.Features))
	for i := range l.Dataset.Features {
		out[i] = l.Dataset.Features[i].Value(key)
	}
	return out
}

// MarkerAt returns the marker drawn under (lon, lat) at zoom, preferring
// the one whose centre is closest. It returns nil when no circle covers
// the point.
func (l *Layer) MarkerAt(lon, lat float64, zoom int) *domain.Marker {
	reach := l.maxRadius + HitSlopPx
	minLon, minLat, maxLon, maxLat := geospatial.PixelBox(lon, lat, reach, zoom)

	var (
		best     *domain.Marker
		bestDist = math.Inf(1)
	)
	for _, i := range l.index.Within(minLon, minLat, maxLon, maxLat) {
		m := &l.Markers[i]
		d := geospatial.PixelDistance(lon, lat, m.Location.Lon, m.Location.Lat, zoom)
		if d > m.Radius+HitSlopPx || d >= bestDist {
			continue
		}
		best, bestDist = m, d
	}
	return best
}

// Frame returns a copy of the layer's renderable state.
func (l *Layer) Frame() domain.LayerFrame {
	markers := make([]domain.Marker, len(l.Markers))
	copy(markers, l.Markers)
	lg := l.Legend
	lg.Circles = append([]domain.LegendCircle(nil), l.Legend.Circles...)
	return domain.LayerFrame{
		Name:      l.Name(),
		Overlay:   l.Profile.Overlay,
		Visible:   l.Visible,
		Attribute: l.Attribute,
		Style:     l.Profile,
		Markers:   markers,
		Legend:    lg,
	}
}

func (l *Layer) refreshMaxRadius() {
	l.maxRadius = 0
	for i := range l.Markers {
		if r := l.Markers[i].Radius; r > l.maxRadius {
			l.maxRadius = r
		}
	}
}

func setMarker(m *domain.Marker, f *domain.Feature, key string, profile domain.StyleProfile) {
	v := f.Value(key)
	m.Attribute = key
	m.Value = v
	m.Radius = 0
	if v.Present {
		m.Radius = domain.Radius(v.Number)
	}
	m.Popup = domain.FormatPopup(f, key, profile)
}
