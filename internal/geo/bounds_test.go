package geo_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/woozymasta/dmvmap/internal/geo"
)

var dmv = geo.BoundingBox{South: 38.5, West: -77.5, North: 39.5, East: -76.5}

func TestWithin_Empty(t *testing.T) {
	got := geo.Within(nil, dmv)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestWithin_DMV(t *testing.T) {
	dc := geo.GeoPoint{Latitude: 38.9072, Longitude: -77.0369}
	philly := geo.GeoPoint{Latitude: 40.0, Longitude: -75.0}

	got := geo.Within([]geo.GeoPoint{philly, dc}, dmv)
	if len(got) != 1 || got[0] != dc {
		t.Errorf("expected only DC, got %v", got)
	}
}

func TestWithin_InclusiveEdges(t *testing.T) {
	points := []geo.GeoPoint{
		{Latitude: 38.5, Longitude: -77.5},
		{Latitude: 39.5, Longitude: -76.5},
		{Latitude: 38.5, Longitude: -77.0},
		{Latitude: 38.4999999, Longitude: -77.0},
		{Latitude: 39.0, Longitude: -76.4999999},
	}

	got := geo.Within(points, dmv)
	if !reflect.DeepEqual(got, points[:3]) {
		t.Errorf("expected %v, got %v", points[:3], got)
	}
}

func TestWithin_IdempotentAndStable(t *testing.T) {
	points := []geo.GeoPoint{
		{Latitude: 39.2, Longitude: -77.1},
		{Latitude: 41, Longitude: -77.1},
		{Latitude: 38.6, Longitude: -76.6},
		{Latitude: 38.9, Longitude: -78},
		{Latitude: 38.7, Longitude: -77.4},
	}

	once := geo.Within(points, dmv)
	twice := geo.Within(once, dmv)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filter not idempotent: %v vs %v", once, twice)
	}
	if len(once) != 3 || once[0] != points[0] || once[1] != points[2] || once[2] != points[4] {
		t.Errorf("unexpected order or content: %v", once)
	}

	once[0].Latitude = 0
	if points[0].Latitude != 39.2 {
		t.Errorf("result aliases input")
	}
}

func TestWithinFeatures(t *testing.T) {
	features := []geo.NormalizedFeature{
		{Location: geo.GeoPoint{Latitude: 38.9072, Longitude: -77.0369}, Properties: map[string]any{"name": "in"}},
		{Location: geo.GeoPoint{Latitude: 40, Longitude: -75}, Properties: map[string]any{"name": "out"}},
	}

	got := geo.WithinFeatures(features, dmv)
	if len(got) != 1 || got[0].Properties["name"] != "in" {
		t.Errorf("expected only the DC feature, got %v", got)
	}
}

func TestBoundingBox_Validate(t *testing.T) {
	if err := dmv.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := []geo.BoundingBox{
		{South: 40, West: -77, North: 39, East: -76},
		{South: 38, West: 170, North: 39, East: -170},
	}
	for _, b := range bad {
		if err := b.Validate(); !errors.Is(err, geo.ErrInvalidGeometry) {
			t.Errorf("box %v: expected ErrInvalidGeometry, got %v", b, err)
		}
	}
}
