// Package photos turns geotagged dog-walk photos into map points with WebP thumbnails.
package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/woozymasta/dmvmap/internal/geo"

	"github.com/paulmach/orb/geojson"
)

const (
	captionPrefix = "Dog Walk - "
	unknownDate   = "Unknown date"

	defaultConcurrency = 4
	defaultThumbSize   = 256
	defaultQuality     = 80
)

// Photo is a photo that made it onto the map.
type Photo struct {
	Name     string       `json:"name"`
	URL      string       `json:"url"`
	IconURL  string       `json:"iconUrl"`
	Caption  string       `json:"caption"`
	Date     string       `json:"date,omitempty"`
	Location geo.GeoPoint `json:"location"`
}

// Result is the outcome for one listed file.
type Result struct {
	Err   error
	Photo Photo
	Name  string
}

// Options controls Process.
type Options struct {
	// ReadGPS extracts tags from raw image bytes; defaults to ReadGPS.
	ReadGPS func(io.Reader) (geo.GPSTags, error)

	ThumbDir       string // thumbnails are skipped when empty
	URLPrefix      string // prefix for full-size image URLs
	ThumbURLPrefix string // prefix for thumbnail URLs
	Concurrency    int
	ThumbSize      int
	Quality        float32
	Force          bool
}

func (o *Options) defaults() {
	if o.ReadGPS == nil {
		o.ReadGPS = ReadGPS
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.ThumbSize <= 0 {
		o.ThumbSize = defaultThumbSize
	}
	if o.Quality <= 0 {
		o.Quality = defaultQuality
	}
}

// Caption builds the popup caption from an EXIF date.
func Caption(date string) string {
	if date == "" {
		date = unknownDate
	}
	return captionPrefix + date
}

// ThumbName is the thumbnail file name for a photo.
func ThumbName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".webp"
}

// Process lists src and converts every photo. Each listed file yields exactly
// one Result, in listing order; a failing photo never affects the others.
func Process(ctx context.Context, src Source, opts Options) ([]Result, error) {
	names, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	return ProcessNames(ctx, src, names, opts), nil
}

// ProcessNames converts the given photos with a bounded worker pool.
func ProcessNames(ctx context.Context, src Source, names []string, opts Options) []Result {
	opts.defaults()

	results := make([]Result, len(names))
	jobs := make(chan int, len(names))
	for i := range names {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < min(opts.Concurrency, max(1, len(names))); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				name := names[i]
				if err := ctx.Err(); err != nil {
					results[i] = Result{Name: name, Err: err}
					continue
				}

				p, err := processOne(ctx, src, name, opts)
				results[i] = Result{Name: name, Photo: p, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}

func processOne(ctx context.Context, src Source, name string, opts Options) (Photo, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return Photo{}, err
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return Photo{}, err
	}

	tags, err := opts.ReadGPS(bytes.NewReader(data))
	if err != nil {
		return Photo{}, err
	}

	loc, err := tags.Location()
	if err != nil {
		return Photo{}, err
	}

	date := tags.Date()
	p := Photo{
		Name:     name,
		URL:      joinURL(opts.URLPrefix, name),
		Caption:  Caption(date),
		Date:     date,
		Location: loc,
	}
	p.IconURL = p.URL

	if opts.ThumbDir != "" {
		if err := writeThumb(data, filepath.Join(opts.ThumbDir, ThumbName(name)), opts); err != nil {
			return Photo{}, fmt.Errorf("thumbnail: %w", err)
		}
		p.IconURL = joinURL(opts.ThumbURLPrefix, ThumbName(name))
	}

	return p, nil
}

func writeThumb(data []byte, out string, opts Options) error {
	if !opts.Force {
		if info, err := os.Stat(out); err == nil && info.Size() > 0 {
			return nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return WriteWebP(out, Thumbnail(img, opts.ThumbSize), opts.Quality)
}

func joinURL(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if strings.Contains(prefix, "://") {
		return strings.TrimRight(prefix, "/") + "/" + name
	}
	return path.Join(prefix, name)
}

// Partition splits results into placed photos and failures.
func Partition(results []Result) ([]Photo, []Result) {
	placed := make([]Photo, 0, len(results))
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		placed = append(placed, r.Photo)
	}

	return placed, failed
}

// IsNoGPS reports whether a failure only means the photo is not geotagged.
func IsNoGPS(err error) bool {
	return errors.Is(err, ErrNoGPS)
}

// FeatureCollection renders photos as point GeoJSON for the photo layer.
func FeatureCollection(photos []Photo) *geojson.FeatureCollection {
	features := make([]geo.NormalizedFeature, 0, len(photos))
	for _, p := range photos {
		features = append(features, geo.NormalizedFeature{
			ID:       p.Name,
			Location: p.Location,
			Properties: map[string]any{
				"name":    p.Name,
				"url":     p.URL,
				"iconUrl": p.IconURL,
				"caption": p.Caption,
				"date":    p.Date,
			},
		})
	}

	return geo.FeatureCollection(features)
}
