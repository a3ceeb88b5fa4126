package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// GeometryKind tags the variant held by a GeometryRecord.
type GeometryKind int

const (
	KindUnknown GeometryKind = iota
	KindPoint
	KindPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindPolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// GeometryRecord is a Point or a Polygon with its properties bag.
// For polygons only Outer is used; Holes are carried but ignored.
type GeometryRecord struct {
	ID         any
	Properties map[string]any
	Outer      orb.Ring
	Holes      []orb.Ring
	Point      GeoPoint
	Kind       GeometryKind
}

// PointRecord builds a Point record.
func PointRecord(p GeoPoint, props map[string]any) GeometryRecord {
	return GeometryRecord{Kind: KindPoint, Point: p, Properties: props}
}

// PolygonRecord builds a Polygon record from its outer ring and holes.
func PolygonRecord(outer orb.Ring, holes []orb.Ring, props map[string]any) GeometryRecord {
	return GeometryRecord{Kind: KindPolygon, Outer: outer, Holes: holes, Properties: props}
}

// NormalizedFeature is always a point.
type NormalizedFeature struct {
	ID         any            `json:"id,omitempty" yaml:"id,omitempty"`
	Properties map[string]any `json:"properties" yaml:"properties"`
	Location   GeoPoint       `json:"location" yaml:"location"`
}

// Result is the outcome for one input record; exactly one of Feature and Err is meaningful.
type Result struct {
	Err     error
	Feature NormalizedFeature
	Index   int
}

// RecordError ties a failure to the position of the record that caused it.
type RecordError struct {
	Err   error
	Index int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NormalizeRecord converts one record to a point feature.
// Polygons are replaced by the centroid of their outer ring.
func NormalizeRecord(r GeometryRecord) (NormalizedFeature, error) {
	var loc GeoPoint

	switch r.Kind {
	case KindPoint:
		p, err := NewGeoPoint(r.Point.Latitude, r.Point.Longitude)
		if err != nil {
			return NormalizedFeature{}, err
		}
		loc = p

	case KindPolygon:
		c, err := Centroid(r.Outer)
		if err != nil {
			return NormalizedFeature{}, fmt.Errorf("polygon centroid: %w", err)
		}
		loc = c

	default:
		return NormalizedFeature{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometryType, r.Kind)
	}

	return NormalizedFeature{
		ID:         r.ID,
		Location:   loc,
		Properties: CloneProperties(r.Properties),
	}, nil
}

// Normalize converts every record and reports failures per record.
// The result has one entry per input, in input order.
func Normalize(records []GeometryRecord) []Result {
	results := make([]Result, len(records))
	for i, r := range records {
		f, err := NormalizeRecord(r)
		results[i] = Result{Index: i, Feature: f, Err: err}
	}

	return results
}

// NormalizeAll is the strict variant: the first bad record fails the whole batch.
func NormalizeAll(records []GeometryRecord) ([]NormalizedFeature, error) {
	features := make([]NormalizedFeature, 0, len(records))
	for i, r := range records {
		f, err := NormalizeRecord(r)
		if err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		features = append(features, f)
	}

	return features, nil
}

// Partition splits results into valid features (input order kept) and failures.
func Partition(results []Result) ([]NormalizedFeature, []*RecordError) {
	valid := make([]NormalizedFeature, 0, len(results))
	var failed []*RecordError

	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, &RecordError{Index: r.Index, Err: r.Err})
			continue
		}
		valid = append(valid, r.Feature)
	}

	return valid, failed
}

// CloneProperties deep-copies a properties bag, including nested maps and slices.
func CloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneProperties(t)
	case []any:
		s := make([]any, len(t))
		for i := range t {
			s[i] = cloneValue(t[i])
		}
		return s
	case []string:
		return append([]string(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	default:
		return v
	}
}
