package geo

import (
	"fmt"
	"math"
	"strings"
)

// Hemisphere is the EXIF GPS reference letter.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
	East  Hemisphere = "E"
	West  Hemisphere = "W"
)

// DMSAngle is a sexagesimal angle as stored in camera GPS metadata.
type DMSAngle struct {
	Hemisphere Hemisphere
	Degrees    float64
	Minutes    float64
	Seconds    float64
}

// ToDecimalDegrees converts a DMS angle to signed decimal degrees (S and W are negative).
func ToDecimalDegrees(a DMSAngle) (float64, error) {
	for _, v := range []float64{a.Degrees, a.Minutes, a.Seconds} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: non-finite component in %v", ErrInvalidAngle, a)
		}
	}
	if a.Degrees < 0 {
		return 0, fmt.Errorf("%w: negative degrees %v", ErrInvalidAngle, a.Degrees)
	}
	if a.Minutes < 0 || a.Minutes >= 60 {
		return 0, fmt.Errorf("%w: minutes %v outside [0, 60)", ErrInvalidAngle, a.Minutes)
	}
	if a.Seconds < 0 || a.Seconds >= 60 {
		return 0, fmt.Errorf("%w: seconds %v outside [0, 60)", ErrInvalidAngle, a.Seconds)
	}

	dd := a.Degrees + a.Minutes/60 + a.Seconds/3600

	switch a.Hemisphere {
	case North, East:
		return dd, nil
	case South, West:
		return -dd, nil
	default:
		return 0, fmt.Errorf("%w: unknown hemisphere %q", ErrInvalidAngle, a.Hemisphere)
	}
}

// GPSTags holds already-decoded EXIF GPS fields.
type GPSTags struct {
	GPSLatitudeRef  string    `json:"GPSLatitudeRef"`
	GPSLongitudeRef string    `json:"GPSLongitudeRef"`
	DateTime        string    `json:"DateTime,omitempty"`
	GPSLatitude     []float64 `json:"GPSLatitude"`
	GPSLongitude    []float64 `json:"GPSLongitude"`
}

// Location converts the tags to a point. A latitude outside [-90, 90] or a
// longitude outside [-180, 180] is reported as ErrInvalidGeometry, never clamped.
func (t GPSTags) Location() (GeoPoint, error) {
	lat, err := tagAngle("latitude", t.GPSLatitude, t.GPSLatitudeRef, North, South)
	if err != nil {
		return GeoPoint{}, err
	}

	lng, err := tagAngle("longitude", t.GPSLongitude, t.GPSLongitudeRef, East, West)
	if err != nil {
		return GeoPoint{}, err
	}

	return NewGeoPoint(lat, lng)
}

// Date returns the calendar part of DateTime ("2025:07:31 19:36:33" -> "2025:07:31").
func (t GPSTags) Date() string {
	dt := strings.TrimSpace(t.DateTime)
	if dt == "" {
		return ""
	}
	date, _, _ := strings.Cut(dt, " ")

	return date
}

func tagAngle(axis string, values []float64, ref string, pos, neg Hemisphere) (float64, error) {
	if len(values) != 3 {
		return 0, fmt.Errorf("%w: %s needs 3 values, got %d", ErrInvalidAngle, axis, len(values))
	}

	h := Hemisphere(strings.ToUpper(strings.TrimSpace(ref)))
	if h != pos && h != neg {
		return 0, fmt.Errorf("%w: %s reference %q", ErrInvalidAngle, axis, ref)
	}

	dd, err := ToDecimalDegrees(DMSAngle{Degrees: values[0], Minutes: values[1], Seconds: values[2], Hemisphere: h})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", axis, err)
	}

	return dd, nil
}
