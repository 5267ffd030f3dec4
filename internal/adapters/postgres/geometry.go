package postgres

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// SRID of stored feature geometry.
const SRID = 4326

// EncodePoint converts a location to EWKB bytes with SRID 4326.
func EncodePoint(p domain.GeoPoint) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}).SetSRID(SRID)
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, fmt.Errorf("encode point: %w", err)
	}
	return data, nil
}

// DecodePoint reads an EWKB point.
func DecodePoint(data []byte) (domain.GeoPoint, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("decode point: %w", err)
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("decode point: got %T", g)
	}
	return domain.GeoPoint{Lon: p.X(), Lat: p.Y()}, nil
}
