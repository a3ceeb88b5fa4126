// Package geo normalizes raw geographic input into point records for map markers.
//
// Everything in this package is pure: no I/O, no logging, no shared state.
// Failures are returned to the caller, who decides whether to skip a record
// or abort the batch.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// GeoPoint is a WGS84 coordinate. Use NewGeoPoint to construct a validated value.
type GeoPoint struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
}

// NewGeoPoint returns a point after checking latitude and longitude ranges.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if !validLatitude(lat) || !validLongitude(lng) {
		return GeoPoint{}, fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidGeometry, lat, lng)
	}

	return GeoPoint{Latitude: lat, Longitude: lng}, nil
}

// Orb returns the point in GeoJSON (lng, lat) order.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Latitude, p.Longitude)
}

// BoundingBox is a non-wrapping rectangle in decimal degrees.
type BoundingBox struct {
	South float64 `json:"south" yaml:"south"`
	West  float64 `json:"west" yaml:"west"`
	North float64 `json:"north" yaml:"north"`
	East  float64 `json:"east" yaml:"east"`
}

// Validate reports whether the box is usable for filtering.
// Boxes crossing the antimeridian (west > east) are not supported.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.South, b.West, b.North, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounding box has non-finite edge", ErrInvalidGeometry)
		}
	}
	if b.South > b.North {
		return fmt.Errorf("%w: bounding box south %v > north %v", ErrInvalidGeometry, b.South, b.North)
	}
	if b.West > b.East {
		return fmt.Errorf("%w: bounding box west %v > east %v", ErrInvalidGeometry, b.West, b.East)
	}

	return nil
}

// Contains is inclusive on all four edges.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return b.South <= p.Latitude && p.Latitude <= b.North &&
		b.West <= p.Longitude && p.Longitude <= b.East
}

func validLatitude(v float64) bool {
	return v >= -90 && v <= 90
}

func validLongitude(v float64) bool {
	return v >= -180 && v <= 180
}
