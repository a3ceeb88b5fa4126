package geo_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/woozymasta/dmvmap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const mixedCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1, "geometry": {"type": "Point", "coordinates": [-76.99337, 38.98918]},
     "properties": {"name": "Corner Cafe", "cuisine": "coffee"}},
    {"type": "Feature", "id": 2, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]],[[1,1],[2,1],[2,2],[1,1]]]},
     "properties": {"name": "Footprint"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": [[[[0,0],[1,0],[1,1],[0,0]]]]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [200, 10]}, "properties": {}}
  ]
}`

func TestNormalizeCollection(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(mixedCollection))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	results := geo.NormalizeCollection(fc)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	if results[0].Err != nil || results[0].Feature.Location != (geo.GeoPoint{Latitude: 38.98918, Longitude: -76.99337}) {
		t.Errorf("point feature: %+v", results[0])
	}
	if results[0].Feature.Properties["cuisine"] != "coffee" {
		t.Errorf("properties not carried: %v", results[0].Feature.Properties)
	}

	if results[1].Err != nil || results[1].Feature.Location != (geo.GeoPoint{Latitude: 2, Longitude: 2}) {
		t.Errorf("polygon feature: %+v", results[1])
	}

	for _, i := range []int{2, 3} {
		if !errors.Is(results[i].Err, geo.ErrUnsupportedGeometryType) {
			t.Errorf("result %d: expected ErrUnsupportedGeometryType, got %v", i, results[i].Err)
		}
	}

	if !errors.Is(results[4].Err, geo.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry for out-of-range point, got %v", results[4].Err)
	}
}

func TestNormalizeCollectionAll(t *testing.T) {
	const flatPolygon = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-77.0369, 38.9072]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,1],[2,2],[0,0]]]}, "properties": {}}
  ]
}`
	const clean = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-77.0369, 38.9072]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}, "properties": {}}
  ]
}`

	tests := []struct {
		name      string
		input     string
		wantIndex int
		wantErr   error
	}{
		{"unsupported geometry", mixedCollection, 2, geo.ErrUnsupportedGeometryType},
		{"zero area polygon", flatPolygon, 1, geo.ErrInvalidGeometry},
		{"clean", clean, -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := geojson.UnmarshalFeatureCollection([]byte(tt.input))
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			features, err := geo.NormalizeCollectionAll(fc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(features) != len(fc.Features) {
					t.Errorf("expected %d features, got %d", len(fc.Features), len(features))
				}
				return
			}

			var re *geo.RecordError
			if !errors.As(err, &re) {
				t.Fatalf("expected *RecordError, got %v", err)
			}
			if re.Index != tt.wantIndex || !errors.Is(err, tt.wantErr) {
				t.Errorf("got index %d err %v, want index %d err %v", re.Index, err, tt.wantIndex, tt.wantErr)
			}
			if features != nil {
				t.Errorf("expected no features on failure, got %d", len(features))
			}
		})
	}
}

func TestRecordFromFeature_NoGeometry(t *testing.T) {
	if _, err := geo.RecordFromFeature(&geojson.Feature{}); !errors.Is(err, geo.ErrUnsupportedGeometryType) {
		t.Errorf("expected ErrUnsupportedGeometryType, got %v", err)
	}
	if _, err := geo.RecordFromFeature(nil); !errors.Is(err, geo.ErrUnsupportedGeometryType) {
		t.Errorf("expected ErrUnsupportedGeometryType for nil, got %v", err)
	}
}

func TestFeatureCollection_RoundTripPoints(t *testing.T) {
	features := []geo.NormalizedFeature{
		{ID: 7, Location: geo.GeoPoint{Latitude: 38.9072, Longitude: -77.0369}, Properties: map[string]any{"name": "DC"}},
	}

	data, err := json.Marshal(geo.FeatureCollection(features))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}

	p, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok || p != (orb.Point{-77.0369, 38.9072}) {
		t.Errorf("expected lng/lat point, got %v", fc.Features[0].Geometry)
	}
	if fc.Features[0].Properties["name"] != "DC" {
		t.Errorf("expected name DC, got %v", fc.Features[0].Properties)
	}
}
