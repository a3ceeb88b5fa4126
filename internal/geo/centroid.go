package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// degenerateAreaRatio is the doubled signed area, relative to the squared
// bounding diagonal, below which a ring counts as collinear.
const degenerateAreaRatio = 1e-12

// Centroid returns the area-weighted center of a polygon ring given in
// GeoJSON (lng, lat) order.
func Centroid(ring orb.Ring) (GeoPoint, error) {
	c, err := RingCentroid(ring)
	if err != nil {
		return GeoPoint{}, err
	}

	return NewGeoPoint(c[1], c[0])
}

// RingCentroid computes the shoelace centroid of a ring in its own axis order.
// The ring may be open or explicitly closed. Self-intersecting rings give an
// undefined result.
//
// Vertices are shifted so the first one sits at the origin before summing;
// building-sized rings at real-world coordinates lose most of their
// significant digits otherwise.
func RingCentroid(ring orb.Ring) (orb.Point, error) {
	pts := openRing(ring)
	if distinctVertices(pts) < 3 {
		return orb.Point{}, fmt.Errorf("%w: ring needs at least 3 distinct vertices", ErrInvalidGeometry)
	}

	ox, oy := pts[0][0], pts[0][1]
	minX, minY, maxX, maxY := ox, oy, ox, oy

	var x, y, area float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		x0, y0 := pts[i][0]-ox, pts[i][1]-oy
		x1, y1 := pts[j][0]-ox, pts[j][1]-oy

		a := x0*y1 - x1*y0
		x += (x0 + x1) * a
		y += (y0 + y1) * a
		area += a

		minX, maxX = math.Min(minX, pts[i][0]), math.Max(maxX, pts[i][0])
		minY, maxY = math.Min(minY, pts[i][1]), math.Max(maxY, pts[i][1])
	}

	dx, dy := maxX-minX, maxY-minY
	if math.IsNaN(area) || math.IsInf(area, 0) || math.Abs(area) <= degenerateAreaRatio*(dx*dx+dy*dy) {
		return orb.Point{}, fmt.Errorf("%w: ring has zero area", ErrInvalidGeometry)
	}

	area *= 0.5
	x /= 6 * area
	y /= 6 * area

	return orb.Point{x + ox, y + oy}, nil
}

// openRing drops the explicit closing vertex, if any.
func openRing(ring orb.Ring) []orb.Point {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}

	return ring
}

func distinctVertices(pts []orb.Point) int {
	seen := make(map[orb.Point]struct{}, len(pts))
	for _, p := range pts {
		seen[p] = struct{}{}
		if len(seen) >= 3 {
			break
		}
	}

	return len(seen)
}
