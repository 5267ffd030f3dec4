package geospatial

import "github.com/tidwall/rtree"

// PointIndex is an R-tree of points keyed by an integer handle.
type PointIndex struct {
	tree rtree.RTreeG[int]
	n    int
}

// Insert adds a point with handle id.
func (ix *PointIndex) Insert(lon, lat float64, id int) {
	p := [2]float64{lon, lat}
	ix.tree.Insert(p, p, id)
	ix.n++
}

// Len is the number of indexed points.
func (ix *PointIndex) Len() int {
	return ix.n
}

// Within returns the handles of points inside the box.
func (ix *PointIndex) Within(minLon, minLat, maxLon, maxLat float64) []int {
	ids := make([]int, 0, 8)
	ix.tree.Search([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, func(_, _ [2]float64, id int) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
