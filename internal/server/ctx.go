package server

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/woozymasta/dmvmap/assets"
	"github.com/woozymasta/dmvmap/internal/config"
	"github.com/woozymasta/dmvmap/internal/geo"
	"github.com/woozymasta/dmvmap/internal/processor"
	"github.com/woozymasta/dmvmap/internal/recs"
	"github.com/woozymasta/dmvmap/internal/restaurants"

	"github.com/rs/zerolog/log"
)

// Recommendations is the document-backed recommendation layer.
type Recommendations interface {
	List(ctx context.Context) ([]recs.Marker, error)
	Add(ctx context.Context, loc geo.GeoPoint, rec recs.Recommendation) (recs.Marker, error)
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Recs      Recommendations // nil when no bin is configured
	IndexHTML []byte
	Favicon   []byte

	mu          sync.RWMutex
	restaurants *restaurants.Dataset
}

// NewServerContext loads the restaurant data set produced by the loader.
// A missing file leaves the dashboard empty rather than failing startup.
func NewServerContext(cfg *config.Config) *ServerContext {
	s := &ServerContext{
		Config:      cfg,
		IndexHTML:   assets.Index,
		Favicon:     assets.Favicon,
		restaurants: restaurants.NewDataset(nil),
	}

	if err := s.ReloadRestaurants(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().
				Str("path", cfg.Restaurants.Output).
				Msg("Restaurants file not found, run the loader first")
		} else {
			log.Error().Err(err).Str("path", cfg.Restaurants.Output).Msg("Failed to load restaurants")
		}
	}

	log.Info().
		Int("restaurants", s.Dataset().Len()).
		Int("overlays", len(cfg.Overlays)).
		Msg("Server context initialized successfully")

	return s
}

// ReloadRestaurants replaces the served data set with the file on disk.
func (s *ServerContext) ReloadRestaurants() error {
	ds, failed, err := restaurants.LoadFile(s.Config.Restaurants.Output)
	if err != nil {
		return err
	}
	processor.ReportSkipped("restaurants", failed)

	s.mu.Lock()
	s.restaurants = ds
	s.mu.Unlock()

	log.Debug().Int("count", ds.Len()).Msg("Restaurants loaded")

	return nil
}

// Dataset returns the current restaurant data set.
func (s *ServerContext) Dataset() *restaurants.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restaurants
}
