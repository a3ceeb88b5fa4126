// Package recs handles user-submitted restaurant recommendations kept in one JSON document.
package recs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/dmvmap/internal/geo"
)

// ErrUnknownDocument is returned for a stored document of unrecognized shape.
var ErrUnknownDocument = errors.New("unknown document shape")

// Shape is the layout of the stored document.
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeCollection
	ShapeArray
	ShapePoints
)

// Document is the parsed store content. Keys other than the entry list are
// preserved when it is encoded again.
type Document struct {
	object  map[string]json.RawMessage
	entries []json.RawMessage
	shape   Shape
}

// Popup is the text shown for one recommendation.
type Popup struct {
	Name          string `json:"name"`
	Address       string `json:"address,omitempty"`
	Cuisine       string `json:"cuisine,omitempty"`
	FavoriteDish  string `json:"favorite_dish,omitempty"`
	RecommendedBy string `json:"recommended_by,omitempty"`
	Date          string `json:"date,omitempty"`
}

// Marker is a recommendation ready to be placed.
type Marker struct {
	Popup    Popup        `json:"popup"`
	Location geo.GeoPoint `json:"location"`
	Index    int          `json:"index"`
}

// ParseDocument accepts a FeatureCollection, a bare array, or an object with
// a "points" array. Empty input and null give an empty document.
func ParseDocument(raw []byte) (*Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return &Document{shape: ShapeEmpty}, nil
	}

	switch raw[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		return &Document{shape: ShapeArray, entries: entries}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		if len(obj) == 0 {
			return &Document{shape: ShapeEmpty}, nil
		}

		var typ string
		_ = json.Unmarshal(obj["type"], &typ)

		var entries []json.RawMessage
		switch {
		case typ == "FeatureCollection" && (obj["features"] == nil || json.Unmarshal(obj["features"], &entries) == nil):
			// missing and null features are an empty collection
			return &Document{shape: ShapeCollection, object: obj, entries: entries}, nil
		case obj["points"] != nil && json.Unmarshal(obj["points"], &entries) == nil:
			return &Document{shape: ShapePoints, object: obj, entries: entries}, nil
		}
	}

	return nil, ErrUnknownDocument
}

// Shape returns the document layout.
func (d *Document) Shape() Shape {
	return d.shape
}

// Len is the number of entries, placeable or not.
func (d *Document) Len() int {
	return len(d.entries)
}

// Append adds an entry. An empty document becomes a FeatureCollection.
func (d *Document) Append(entry any) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if d.shape == ShapeEmpty {
		d.shape = ShapeCollection
	}
	d.entries = append(d.entries, b)

	return nil
}

// Encode renders the document for storage.
func (d *Document) Encode() ([]byte, error) {
	entries := d.entries
	if entries == nil {
		entries = []json.RawMessage{}
	}

	list, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	obj := make(map[string]json.RawMessage, len(d.object)+2)
	for k, v := range d.object {
		obj[k] = v
	}

	switch d.shape {
	case ShapeArray:
		return list, nil
	case ShapePoints:
		obj["points"] = list
	default:
		obj["type"] = json.RawMessage(`"FeatureCollection"`)
		obj["features"] = list
	}

	return json.Marshal(obj)
}

// Markers returns every entry with a usable location. The count of entries
// without one is returned alongside.
func (d *Document) Markers() ([]Marker, int) {
	markers := make([]Marker, 0, len(d.entries))
	skipped := 0

	for i, raw := range d.entries {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			skipped++
			continue
		}

		loc, ok := entryLocation(m)
		if !ok {
			skipped++
			continue
		}

		markers = append(markers, Marker{Index: i, Location: loc, Popup: entryPopup(m, i)})
	}

	return markers, skipped
}

func isFeature(m map[string]any) bool {
	t, _ := m["type"].(string)
	return t == "Feature"
}

func entryLocation(m map[string]any) (geo.GeoPoint, bool) {
	var lat, lng float64

	if g, ok := m["geometry"].(map[string]any); ok && isFeature(m) && g["type"] == "Point" {
		coords, _ := g["coordinates"].([]any)
		if len(coords) < 2 {
			return geo.GeoPoint{}, false
		}
		lng, _ = number(coords[0])
		lat, _ = number(coords[1])
	} else {
		lat = firstNumber(m, "lat", "latitude", "y")
		lng = firstNumber(m, "lng", "lon", "longitude", "x")
	}

	// zero means missing, as on the page
	if lat == 0 || lng == 0 {
		return geo.GeoPoint{}, false
	}

	p, err := geo.NewGeoPoint(lat, lng)
	if err != nil {
		return geo.GeoPoint{}, false
	}

	return p, true
}

func entryPopup(m map[string]any, index int) Popup {
	var p Popup

	if props, ok := m["properties"].(map[string]any); ok && isFeature(m) {
		p = Popup{
			Name:          firstString(props, "Restaurant Name", "Name"),
			Address:       firstString(props, "Restaurant Address", "Address"),
			Cuisine:       firstString(props, "Cuisine"),
			FavoriteDish:  firstString(props, "Favorite Dish"),
			RecommendedBy: firstString(props, "Recommended By"),
			Date:          firstString(props, "Date"),
		}
	} else {
		p = Popup{
			Name:          firstString(m, "restaurantName", "name"),
			Address:       firstString(m, "address"),
			Cuisine:       firstString(m, "cuisine"),
			FavoriteDish:  firstString(m, "favoriteDish"),
			RecommendedBy: firstString(m, "recommendedBy"),
			Date:          firstString(m, "date"),
		}
	}

	if p.Name == "" {
		p.Name = fmt.Sprintf("Restaurant %d", index+1)
	}

	return p
}

func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func firstNumber(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := number(m[k]); ok && f != 0 {
			return f
		}
	}
	return 0
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
