package geospatial

import "math"

const (
	// TileSize is the edge of a web-map tile in pixels.
	TileSize = 256

	// MaxLatitude is the web-mercator latitude limit.
	MaxLatitude = 85.05112878
)

// Project converts a coordinate to world pixel coordinates at zoom,
// with the origin at the top-left corner (lon -180, lat MaxLatitude).
func Project(lon, lat float64, zoom int) (px, py float64) {
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	scale := TileSize * math.Exp2(float64(zoom))

	x := (lon + 180) / 360
	sin := math.Sin(lat * math.Pi / 180)
	y := 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)

	return x * scale, y * scale
}

// PixelDistance is the screen distance between two coordinates at zoom.
func PixelDistance(lon1, lat1, lon2, lat2 float64, zoom int) float64 {
	x1, y1 := Project(lon1, lat1, zoom)
	x2, y2 := Project(lon2, lat2, zoom)
	return math.Hypot(x2-x1, y2-y1)
}

// DegreesPerPixel is the longitude span of one pixel at zoom.
func DegreesPerPixel(zoom int) float64 {
	return 360 / (TileSize * math.Exp2(float64(zoom)))
}

// PixelBox returns a lon/lat box that contains every point within
// radiusPx pixels of (lon, lat) at zoom. Mercator shrinks a pixel's
// latitude span, so the longitude span bounds both axes.
func PixelBox(lon, lat, radiusPx float64, zoom int) (minLon, minLat, maxLon, maxLat float64) {
	d := radiusPx * DegreesPerPixel(zoom)
	return lon - d, lat - d, lon + d, lat + d
}
