package geo_test

import (
	"errors"
	"math"
	"testing"

	"github.com/woozymasta/dmvmap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const eps = 1e-9

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func reversed(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i := range r {
		out[len(r)-1-i] = r[i]
	}
	return out
}

func TestCentroid_Square(t *testing.T) {
	tests := []struct {
		name string
		ring orb.Ring
	}{
		{"closed", orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}},
		{"open", orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}}},
		{"clockwise", orb.Ring{{0, 0}, {0, 4}, {4, 4}, {4, 0}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := geo.Centroid(tt.ring)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !near(c.Latitude, 2, eps) || !near(c.Longitude, 2, eps) {
				t.Errorf("expected (2, 2), got %v", c)
			}
		})
	}
}

func TestCentroid_AxisOrder(t *testing.T) {
	// rectangle spanning lng 10..14, lat 1..3
	ring := orb.Ring{{10, 1}, {14, 1}, {14, 3}, {10, 3}, {10, 1}}

	c, err := geo.Centroid(ring)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(c.Longitude, 12, eps) || !near(c.Latitude, 2, eps) {
		t.Errorf("expected lat 2 lng 12, got %v", c)
	}
}

func TestCentroid_OrientationInvariant(t *testing.T) {
	ring := orb.Ring{
		{-77.0371, 38.9071}, {-77.0366, 38.9070}, {-77.0364, 38.9074},
		{-77.0367, 38.9077}, {-77.0372, 38.9075}, {-77.0371, 38.9071},
	}

	a, err := geo.Centroid(ring)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := geo.Centroid(reversed(ring))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !near(a.Latitude, b.Latitude, 1e-9) || !near(a.Longitude, b.Longitude, 1e-9) {
		t.Errorf("orientation changed centroid: %v vs %v", a, b)
	}
}

func TestCentroid_ConvexInsideHull(t *testing.T) {
	rings := []orb.Ring{
		{{0, 0}, {6, 0}, {1, 5}, {0, 0}},
		{{2, 0}, {4, 0}, {5, 2}, {4, 4}, {2, 4}, {1, 2}},
		{{-77.04, 38.90}, {-77.03, 38.90}, {-77.03, 38.91}, {-77.035, 38.915}, {-77.04, 38.91}},
	}

	for i, ring := range rings {
		c, err := geo.Centroid(ring)
		if err != nil {
			t.Fatalf("ring %d: unexpected error: %v", i, err)
		}

		closed := append(orb.Ring{}, ring...)
		if closed[0] != closed[len(closed)-1] {
			closed = append(closed, closed[0])
		}
		if !planar.RingContains(closed, c.Orb()) {
			t.Errorf("ring %d: centroid %v outside polygon", i, c)
		}
	}
}

func TestRingCentroid_MatchesOrb(t *testing.T) {
	ring := orb.Ring{
		{-76.9934, 38.9891}, {-76.9929, 38.9890}, {-76.9927, 38.9894},
		{-76.9931, 38.9897}, {-76.9935, 38.9895}, {-76.9934, 38.9891},
	}

	got, err := geo.RingCentroid(ring)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := planar.CentroidArea(ring)

	if !near(got[0], want[0], 1e-7) || !near(got[1], want[1], 1e-7) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCentroid_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		ring orb.Ring
	}{
		{"empty", orb.Ring{}},
		{"two points", orb.Ring{{0, 0}, {1, 1}}},
		{"closed two points", orb.Ring{{0, 0}, {1, 1}, {0, 0}}},
		{"repeated vertices", orb.Ring{{1, 1}, {1, 1}, {2, 2}, {1, 1}}},
		{"collinear", orb.Ring{{0, 0}, {1, 1}, {2, 2}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geo.Centroid(tt.ring)
			if !errors.Is(err, geo.ErrInvalidGeometry) {
				t.Errorf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func TestCentroid_OutOfRange(t *testing.T) {
	ring := orb.Ring{{0, 95}, {2, 95}, {2, 97}, {0, 97}, {0, 95}}

	_, err := geo.Centroid(ring)
	if !errors.Is(err, geo.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}
