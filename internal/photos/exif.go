package photos

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/dmvmap/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrNoGPS is returned when an image carries no usable EXIF GPS block.
var ErrNoGPS = errors.New("no GPS data in image")

// ReadGPS decodes EXIF from r and returns the raw GPS tags. Conversion to
// decimal degrees is left to geo.GPSTags.Location. A failed sub-IFD other
// than GPS does not hide tags that did decode.
func ReadGPS(r io.Reader) (geo.GPSTags, error) {
	x, err := exif.Decode(r)
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			return geo.GPSTags{}, fmt.Errorf("%w: %w", ErrNoGPS, err)
		}
		log.Debug().Err(err).Msg("Partial EXIF decode")
	}

	lat, err := rationalTriple(x, exif.GPSLatitude)
	if err != nil {
		return geo.GPSTags{}, err
	}
	lng, err := rationalTriple(x, exif.GPSLongitude)
	if err != nil {
		return geo.GPSTags{}, err
	}

	tags := geo.GPSTags{
		GPSLatitude:     lat,
		GPSLatitudeRef:  stringTag(x, exif.GPSLatitudeRef),
		GPSLongitude:    lng,
		GPSLongitudeRef: stringTag(x, exif.GPSLongitudeRef),
		DateTime:        stringTag(x, exif.DateTime),
	}
	if tags.DateTime == "" {
		tags.DateTime = stringTag(x, exif.DateTimeOriginal)
	}

	return tags, nil
}

func rationalTriple(x *exif.Exif, field exif.FieldName) ([]float64, error) {
	tag, err := x.Get(field)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return nil, ErrNoGPS
		}
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	if tag.Format() != tiff.RatVal {
		return nil, fmt.Errorf("%w: %s is not rational", geo.ErrInvalidAngle, field)
	}
	if tag.Count < 3 {
		return nil, fmt.Errorf("%w: %s has %d values", geo.ErrInvalidAngle, field, tag.Count)
	}

	out := make([]float64, 3)
	for i := range out {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		if den == 0 {
			return nil, fmt.Errorf("%w: %s[%d] has zero denominator", geo.ErrInvalidAngle, field, i)
		}
		out[i] = float64(num) / float64(den)
	}

	return out, nil
}

func stringTag(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}

	s, err := tag.StringVal()
	if err != nil {
		return ""
	}

	return strings.TrimRight(strings.TrimSpace(s), "\x00")
}
