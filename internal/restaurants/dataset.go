package restaurants

import (
	"fmt"
	"os"

	"github.com/woozymasta/dmvmap/internal/geo"

	"github.com/paulmach/orb/geojson"
)

// Dataset is the immutable set of restaurant features served by the dashboard.
// It is safe for concurrent readers.
type Dataset struct {
	features []geo.NormalizedFeature
	cuisines []CuisineInfo
}

// View is the dashboard state for one bounding box and selection.
type View struct {
	Summary string `json:"summary"`
	Rows    []Row  `json:"rows"`
	Total   int    `json:"total"`
}

// NewDataset wraps already normalized features.
func NewDataset(features []geo.NormalizedFeature) *Dataset {
	return &Dataset{
		features: features,
		cuisines: Cuisines(features),
	}
}

// LoadFile reads a GeoJSON file and normalizes it. Records that fail are
// returned alongside the dataset so the caller can report them.
func LoadFile(path string) (*Dataset, []*geo.RecordError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	features, failed := geo.FeaturesFromCollection(fc)

	return NewDataset(features), failed, nil
}

// Len is the number of features.
func (d *Dataset) Len() int {
	return len(d.features)
}

// Cuisines returns the cuisine filter entries.
func (d *Dataset) Cuisines() []CuisineInfo {
	return append([]CuisineInfo(nil), d.cuisines...)
}

// View computes table rows for box and selection. A nil box means the whole dataset.
func (d *Dataset) View(box *geo.BoundingBox, sel Selection) View {
	b := geo.BoundingBox{South: -90, West: -180, North: 90, East: 180}
	if box != nil {
		b = *box
	}

	return View{
		Summary: sel.Summary(),
		Rows:    Rows(d.features, b, sel),
		Total:   len(d.features),
	}
}
