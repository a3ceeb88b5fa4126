package restaurants

import (
	"sort"

	"github.com/woozymasta/dmvmap/internal/geo"
)

const (
	unnamed   = "Unnamed"
	notListed = "Not listed"
)

// Row is one line of the "restaurants in view" table.
type Row struct {
	ID       any          `json:"id,omitempty"`
	Name     string       `json:"name"`
	Cuisine  string       `json:"cuisine"`
	Label    string       `json:"label"`
	Color    string       `json:"color"`
	Icon     string       `json:"icon"`
	Hours    string       `json:"hours"`
	Phone    string       `json:"phone"`
	Location geo.GeoPoint `json:"location"`
}

// CuisineInfo describes one entry of the cuisine filter.
type CuisineInfo struct {
	Style
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RowOf projects a feature onto a table row.
func RowOf(f geo.NormalizedFeature) Row {
	cuisine := CuisineOf(f.Properties)
	style := StyleOf(cuisine)

	name := stringProp(f.Properties, "name", "alt_name")
	if name == "" {
		name = unnamed
	}

	hours := stringProp(f.Properties, "opening_hours")
	if hours == "" {
		hours = notListed
	}

	phone := stringProp(f.Properties, "phone")
	if phone == "" {
		phone = notListed
	}

	return Row{
		ID:       f.ID,
		Name:     name,
		Cuisine:  cuisine,
		Label:    Label(cuisine),
		Color:    style.Color,
		Icon:     style.Icon,
		Hours:    hours,
		Phone:    phone,
		Location: f.Location,
	}
}

// Rows filters features by view box and cuisine selection and projects them
// onto table rows, keeping input order.
func Rows(features []geo.NormalizedFeature, box geo.BoundingBox, sel Selection) []Row {
	inView := geo.WithinFeatures(features, box)

	rows := make([]Row, 0, len(inView))
	for _, f := range inView {
		if !sel.Matches(CuisineOf(f.Properties)) {
			continue
		}
		rows = append(rows, RowOf(f))
	}

	return rows
}

// Cuisines lists the distinct cuisines present in features, sorted by key.
func Cuisines(features []geo.NormalizedFeature) []CuisineInfo {
	counts := make(map[string]int)
	for _, f := range features {
		counts[CuisineOf(f.Properties)]++
	}

	out := make([]CuisineInfo, 0, len(counts))
	for c, n := range counts {
		out = append(out, CuisineInfo{Key: c, Label: Label(c), Style: StyleOf(c), Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}
