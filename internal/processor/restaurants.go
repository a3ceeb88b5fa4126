package processor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/woozymasta/dmvmap/internal/config"
	"github.com/woozymasta/dmvmap/internal/geo"
	"github.com/woozymasta/dmvmap/internal/metrics"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// ErrNoSource is returned when a data set has nothing to read from.
var ErrNoSource = errors.New("no source configured")

// ProcessRestaurants normalizes the restaurant source into point GeoJSON.
// Records that cannot be placed are logged and left out.
func ProcessRestaurants(ctx context.Context, client *http.Client, r config.Restaurants, force bool) (Stats, error) {
	if r.Source == "" {
		return Stats{}, ErrNoSource
	}

	if fresh(r.Output, force) {
		log.Debug().Str("path", r.Output).Msg("Restaurants file exists, skipping")
		return Stats{Cached: true}, nil
	}

	log.Info().Str("source", r.Source).Msg("Processing restaurants")

	data, err := fetch(ctx, client, r.Source)
	if err != nil {
		return Stats{}, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Stats{}, fmt.Errorf("parse restaurants: %w", err)
	}

	features, failed := geo.FeaturesFromCollection(fc)
	ReportSkipped("restaurants", failed)

	if err := saveGeoJSON(r.Output, geo.FeatureCollection(features)); err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(fc.Features), Written: len(features), Skipped: len(failed)}
	log.Info().
		Str("path", r.Output).
		Int("total", stats.Total).
		Int("written", stats.Written).
		Int("skipped", stats.Skipped).
		Msg("Restaurants saved")

	return stats, nil
}

// ReportSkipped logs every dropped record and counts them.
func ReportSkipped(dataset string, failed []*geo.RecordError) {
	for _, e := range failed {
		log.Warn().
			Str("dataset", dataset).
			Int("index", e.Index).
			Err(e.Err).
			Msg("Record skipped")
	}

	if len(failed) > 0 {
		metrics.RecordsSkippedTotal.WithLabelValues(dataset).Add(float64(len(failed)))
	}
}
