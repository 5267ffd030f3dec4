package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsAt returns a zero-area box around p.
func BoundsAt(p GeoPoint) Bounds {
	return Bounds{MinLat: p.Lat, MinLon: p.Lon, MaxLat: p.Lat, MaxLon: p.Lon}
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p GeoPoint) {
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	if p.Lon < b.MinLon {
		b.MinLon = p.Lon
	}
	if p.Lon > b.MaxLon {
		b.MaxLon = p.Lon
	}
}

// MapView is the initial viewport of the web map.
type MapView struct {
	Center      GeoPoint `json:"center"`
	Zoom        int      `json:"zoom"`
	MinZoom     int      `json:"min_zoom"`
	MaxZoom     int      `json:"max_zoom"`
	TileURL     string   `json:"tile_url"`
	Attribution string   `json:"attribution"`
}
