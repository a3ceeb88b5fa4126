package recs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/woozymasta/dmvmap/internal/geo"
	"github.com/woozymasta/dmvmap/internal/jsonbin"
	"github.com/woozymasta/dmvmap/internal/metrics"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// ErrMissingField is returned when a recommendation lacks a required field.
var ErrMissingField = errors.New("missing required field")

// Recommendation is the form a visitor submits.
type Recommendation struct {
	Name          string `json:"restaurant_name"`
	Address       string `json:"restaurant_address"`
	Cuisine       string `json:"cuisine"`
	FavoriteDish  string `json:"favorite_dish"`
	RecommendedBy string `json:"recommended_by"`
}

// Trim returns a copy with surrounding spaces removed from every field.
func (r Recommendation) Trim() Recommendation {
	return Recommendation{
		Name:          strings.TrimSpace(r.Name),
		Address:       strings.TrimSpace(r.Address),
		Cuisine:       strings.TrimSpace(r.Cuisine),
		FavoriteDish:  strings.TrimSpace(r.FavoriteDish),
		RecommendedBy: strings.TrimSpace(r.RecommendedBy),
	}
}

// Validate requires every field to be non-blank.
func (r Recommendation) Validate() error {
	t := r.Trim()

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"restaurant_name", t.Name},
		{"restaurant_address", t.Address},
		{"cuisine", t.Cuisine},
		{"favorite_dish", t.FavoriteDish},
		{"recommended_by", t.RecommendedBy},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	return nil
}

// NewFeature builds the stored Point feature for a recommendation.
func NewFeature(loc geo.GeoPoint, rec Recommendation, now time.Time) *geojson.Feature {
	rec = rec.Trim()
	id := now.UnixMilli()

	f := geojson.NewFeature(loc.Orb())
	f.ID = id
	f.Properties = geojson.Properties{
		"OBJECTID":           id,
		"Restaurant Name":    rec.Name,
		"Restaurant Address": rec.Address,
		"Cuisine":            rec.Cuisine,
		"Favorite Dish":      rec.FavoriteDish,
		"Recommended By":     rec.RecommendedBy,
		"Date":               now.UTC().Format("2006-01-02"),
	}

	return f
}

// Service reads and extends the recommendation document.
type Service struct {
	Store jsonbin.Store
	Now   func() time.Time

	mu sync.Mutex
}

// NewService returns a Service over the store.
func NewService(store jsonbin.Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// load parses the stored document. fresh skips any cache in front of the
// store and is used before a write.
func (s *Service) load(ctx context.Context, fresh bool) (*Document, error) {
	read := s.Store.Read
	if fresh {
		read = func(ctx context.Context) ([]byte, error) { return jsonbin.ReadFresh(ctx, s.Store) }
	}

	raw, err := read(ctx)
	if err != nil {
		metrics.StoreRequestsTotal.WithLabelValues("read", "error").Inc()
		return nil, fmt.Errorf("read recommendations: %w", err)
	}
	metrics.StoreRequestsTotal.WithLabelValues("read", "ok").Inc()

	return ParseDocument(raw)
}

// List returns the placeable recommendations.
func (s *Service) List(ctx context.Context) ([]Marker, error) {
	doc, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}

	markers, skipped := doc.Markers()
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Int("total", doc.Len()).Msg("Recommendations without location")
		metrics.RecordsSkippedTotal.WithLabelValues("recs").Add(float64(skipped))
	}

	return markers, nil
}

// Add validates rec and appends it to the document at loc.
func (s *Service) Add(ctx context.Context, loc geo.GeoPoint, rec Recommendation) (Marker, error) {
	if err := rec.Validate(); err != nil {
		return Marker{}, err
	}
	if _, err := geo.NewGeoPoint(loc.Latitude, loc.Longitude); err != nil {
		return Marker{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx, true)
	if err != nil {
		return Marker{}, err
	}

	feature := NewFeature(loc, rec, s.now())
	if err := doc.Append(feature); err != nil {
		return Marker{}, err
	}

	body, err := doc.Encode()
	if err != nil {
		return Marker{}, err
	}

	if err := s.Store.Write(ctx, body); err != nil {
		metrics.StoreRequestsTotal.WithLabelValues("write", "error").Inc()
		return Marker{}, fmt.Errorf("write recommendations: %w", err)
	}
	metrics.StoreRequestsTotal.WithLabelValues("write", "ok").Inc()

	t := rec.Trim()
	log.Info().Str("name", t.Name).Stringer("location", loc).Msg("Recommendation added")

	return Marker{
		Index:    doc.Len() - 1,
		Location: loc,
		Popup: Popup{
			Name:          t.Name,
			Address:       t.Address,
			Cuisine:       t.Cuisine,
			FavoriteDish:  t.FavoriteDish,
			RecommendedBy: t.RecommendedBy,
			Date:          feature.Properties["Date"].(string),
		},
	}, nil
}
