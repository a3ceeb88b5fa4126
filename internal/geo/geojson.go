package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RecordFromFeature maps a GeoJSON feature onto a GeometryRecord.
// Only Point and Polygon geometries are accepted.
func RecordFromFeature(f *geojson.Feature) (GeometryRecord, error) {
	if f == nil || f.Geometry == nil {
		return GeometryRecord{}, fmt.Errorf("%w: feature has no geometry", ErrUnsupportedGeometryType)
	}

	props := map[string]any(f.Properties)

	switch g := f.Geometry.(type) {
	case orb.Point:
		p, err := NewGeoPoint(g[1], g[0])
		if err != nil {
			return GeometryRecord{}, err
		}
		rec := PointRecord(p, props)
		rec.ID = f.ID
		return rec, nil

	case orb.Polygon:
		if len(g) == 0 {
			return GeometryRecord{}, fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
		}
		rec := PolygonRecord(g[0], g[1:], props)
		rec.ID = f.ID
		return rec, nil

	default:
		return GeometryRecord{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometryType, f.Geometry.GeoJSONType())
	}
}

// NormalizeCollection converts every feature of fc, one Result per feature.
func NormalizeCollection(fc *geojson.FeatureCollection) []Result {
	if fc == nil {
		return nil
	}

	results := make([]Result, len(fc.Features))
	for i, f := range fc.Features {
		rec, err := RecordFromFeature(f)
		if err != nil {
			results[i] = Result{Index: i, Err: err}
			continue
		}

		nf, err := NormalizeRecord(rec)
		results[i] = Result{Index: i, Feature: nf, Err: err}
	}

	return results
}

// FeatureCollection renders normalized features as point-only GeoJSON.
func FeatureCollection(features []NormalizedFeature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(features))

	for _, nf := range features {
		f := geojson.NewFeature(nf.Location.Orb())
		f.ID = nf.ID
		f.Properties = geojson.Properties(CloneProperties(nf.Properties))
		fc.Features = append(fc.Features, f)
	}

	return fc
}

// FeaturesFromCollection normalizes fc and returns the failed features separately.
func FeaturesFromCollection(fc *geojson.FeatureCollection) ([]NormalizedFeature, []*RecordError) {
	return Partition(NormalizeCollection(fc))
}

// NormalizeCollectionAll is the strict variant of NormalizeCollection. The
// first feature that cannot be read or placed fails the batch as a *RecordError.
func NormalizeCollectionAll(fc *geojson.FeatureCollection) ([]NormalizedFeature, error) {
	if fc == nil {
		return nil, nil
	}

	records := make([]GeometryRecord, 0, len(fc.Features))
	for i, f := range fc.Features {
		r, err := RecordFromFeature(f)
		if err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		records = append(records, r)
	}

	return NormalizeAll(records)
}
