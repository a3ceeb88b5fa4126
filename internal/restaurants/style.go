// Package restaurants provides the cuisine styling, filtering and table
// projection behind the restaurant dashboard.
package restaurants

import (
	"fmt"
	"strings"
)

// DefaultCuisine is used for features without a cuisine tag and as the
// style for cuisines the table does not know.
const DefaultCuisine = "cafe"

// Style is the marker color and icon for a cuisine.
type Style struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var styles = map[string]Style{
	"mexican":         {Color: "#E74C3C", Icon: "🌮"},
	"american":        {Color: "#3498DB", Icon: "🍔"},
	"italian":         {Color: "#27AE60", Icon: "🍝"},
	"chinese":         {Color: "#F39C12", Icon: "🥡"},
	"japanese":        {Color: "#9B59B6", Icon: "🍣"},
	"indian":          {Color: "#E67E22", Icon: "🍛"},
	"thai":            {Color: "#1ABC9C", Icon: "🍜"},
	"pizza":           {Color: "#E74C3C", Icon: "🍕"},
	"burger":          {Color: "#3498DB", Icon: "🍔"},
	"sandwich":        {Color: "#F1C40F", Icon: "🥪"},
	"coffee":          {Color: "#8B4513", Icon: "☕"},
	"ice_cream":       {Color: "#FFB6C1", Icon: "🍦"},
	"bakery":          {Color: "#DEB887", Icon: "🥐"},
	"seafood":         {Color: "#20B2AA", Icon: "🦐"},
	"steak_house":     {Color: "#8B0000", Icon: "🥩"},
	"barbecue":        {Color: "#CD853F", Icon: "🍖"},
	"fast_food":       {Color: "#FF4500", Icon: "🍟"},
	"cafe":            {Color: "#6F4E37", Icon: "☕"},
	"breakfast":       {Color: "#F39C12", Icon: "🥞"},
	"chicken":         {Color: "#FF6347", Icon: "🐔"},
	"cookie":          {Color: "#D2691E", Icon: "🍪"},
	"donut":           {Color: "#FF69B4", Icon: "🍩"},
	"juice":           {Color: "#32CD32", Icon: "🧃"},
	"mongolian_grill": {Color: "#CD853F", Icon: "🍖"},
	"pasta":           {Color: "#27AE60", Icon: "🍝"},
	"pretzel":         {Color: "#8B4513", Icon: "🥨"},
	"salad":           {Color: "#228B22", Icon: "🥗"},
	"steak":           {Color: "#CD853F", Icon: "🍖"},
	"sushi":           {Color: "#9B59B6", Icon: "🍣"},
	"tex-mex":         {Color: "#E74C3C", Icon: "🌮"},
	"wings":           {Color: "#FF6347", Icon: "🐔"},
}

// StyleOf returns the style for cuisine, falling back to DefaultCuisine.
func StyleOf(cuisine string) Style {
	if s, ok := styles[cuisine]; ok {
		return s
	}

	return styles[DefaultCuisine]
}

// CuisineOf reads the cuisine tag from a properties bag.
func CuisineOf(props map[string]any) string {
	if s := stringProp(props, "cuisine"); s != "" {
		return s
	}

	return DefaultCuisine
}

// Label is the display form of a cuisine key (first underscore becomes a space).
func Label(cuisine string) string {
	return strings.Replace(cuisine, "_", " ", 1)
}

func stringProp(props map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := props[k]
		if !ok || v == nil {
			continue
		}

		var s string
		switch t := v.(type) {
		case string:
			s = t
		case fmt.Stringer:
			s = t.String()
		default:
			s = fmt.Sprint(t)
		}

		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}

	return ""
}
