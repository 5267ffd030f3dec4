// Package geosource reads GeoJSON datasets from files, HTTP endpoints or
// the dataset store.
package geosource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// CountryProperty names the property holding a feature's display name.
const CountryProperty = "Country"

// Decode parses a GeoJSON FeatureCollection. Geometry comes from orb;
// property keys are read again with gjson because Go maps lose the
// document order the year attributes are extracted in.
func Decode(data []byte) ([]domain.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	var props []gjson.Result
	gjson.GetBytes(data, "features").ForEach(func(_, f gjson.Result) bool {
		props = append(props, f.Get("properties"))
		return true
	})
	if len(props) != len(fc.Features) {
		return nil, fmt.Errorf("decode properties: %d features but %d property objects", len(fc.Features), len(props))
	}

	features := make([]domain.Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		if gf.Geometry == nil {
			return nil, fmt.Errorf("feature %d: missing geometry", i)
		}
		f := domain.Feature{
			Location: location(gf.Geometry),
			Values:   make(map[string]domain.Value),
		}
		props[i].ForEach(func(k, v gjson.Result) bool {
			key := k.String()
			f.Keys = append(f.Keys, key)
			if key == CountryProperty {
				f.Country = v.String()
				return true
			}
			if val, ok := numeric(v); ok {
				f.Values[key] = val
			}
			return true
		})
		f.ID = featureID(gf, f.Country, i)
		features = append(features, f)
	}
	return features, nil
}

// location is the point itself, or the centre of the bounds for other
// geometry types.
func location(g orb.Geometry) domain.GeoPoint {
	if p, ok := g.(orb.Point); ok {
		return domain.GeoPoint{Lon: p.Lon(), Lat: p.Lat()}
	}
	c := g.Bound().Center()
	return domain.GeoPoint{Lon: c.Lon(), Lat: c.Lat()}
}

// numeric accepts JSON numbers and numeric strings. Null, empty and
// non-numeric values are absent.
func numeric(v gjson.Result) (domain.Value, bool) {
	switch v.Type {
	case gjson.Number:
		return domain.Num(v.Float()), true
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return domain.Value{}, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Value{}, false
		}
		return domain.Num(n), true
	default:
		return domain.Value{}, false
	}
}

func featureID(gf *geojson.Feature, country string, i int) string {
	switch id := gf.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	if country != "" {
		return country
	}
	return strconv.Itoa(i)
}
