package geo

import "errors"

var (
	// ErrInvalidGeometry covers degenerate rings and coordinates outside the valid lat/lng range.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidAngle covers malformed degrees/minutes/seconds input.
	ErrInvalidAngle = errors.New("invalid angle")

	// ErrUnsupportedGeometryType is returned for anything other than Point and Polygon.
	ErrUnsupportedGeometryType = errors.New("unsupported geometry type")
)
