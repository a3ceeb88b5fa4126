package processor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/woozymasta/dmvmap/internal/config"
	"github.com/woozymasta/dmvmap/internal/metrics"
	"github.com/woozymasta/dmvmap/internal/photos"

	"github.com/rs/zerolog/log"
)

// WalkSource picks the photo source for the walks layer and the URL prefix
// full-size images are served from.
func WalkSource(client *http.Client, w config.Walks, token string) (photos.Source, string, error) {
	var (
		src    photos.Source
		prefix = w.URLPrefix
	)

	switch {
	case w.GitHub != nil:
		gh := w.GitHub
		src = &photos.GitHubSource{
			Client: client,
			Owner:  gh.Owner,
			Repo:   gh.Repo,
			Path:   gh.Path,
			Ref:    gh.Ref,
			Token:  token,
		}
		if prefix == "" {
			prefix = fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s",
				gh.Owner, gh.Repo, gh.Ref, strings.Trim(gh.Path, "/"))
		}
	case w.Dir != "":
		src = photos.DirSource{Dir: w.Dir}
		if prefix == "" {
			prefix = "/photos/originals/"
		}
	default:
		return nil, "", ErrNoSource
	}

	if len(w.Fallback) > 0 {
		src = photos.FallbackSource{Source: src, Names: w.Fallback}
	}

	return src, prefix, nil
}

// ProcessWalks reads geotagged photos, writes WebP thumbnails and the walks GeoJSON.
// Photos without GPS data are left out; a failing photo never stops the run.
func ProcessWalks(ctx context.Context, client *http.Client, w config.Walks, token string, concurrency int, force bool) (Stats, error) {
	if fresh(w.Output, force) {
		log.Debug().Str("path", w.Output).Msg("Walks file exists, skipping")
		return Stats{Cached: true}, nil
	}

	src, prefix, err := WalkSource(client, w, token)
	if err != nil {
		return Stats{}, err
	}

	if concurrency <= 0 {
		concurrency = w.Concurrency
	}

	log.Info().Str("output", w.Output).Int("concurrency", concurrency).Msg("Processing walk photos")

	results, err := photos.Process(ctx, src, photos.Options{
		ThumbDir:       w.ThumbDir,
		URLPrefix:      prefix,
		ThumbURLPrefix: w.ThumbURLPrefix,
		Concurrency:    concurrency,
		ThumbSize:      w.ThumbSize,
		Quality:        w.Quality,
		Force:          force,
	})
	if err != nil {
		return Stats{}, err
	}

	placed, failed := photos.Partition(results)
	for _, f := range failed {
		if photos.IsNoGPS(f.Err) {
			log.Debug().Str("photo", f.Name).Msg("Photo has no GPS data")
			continue
		}
		log.Warn().Err(f.Err).Str("photo", f.Name).Msg("Photo skipped")
	}
	if len(failed) > 0 {
		metrics.RecordsSkippedTotal.WithLabelValues("walks").Add(float64(len(failed)))
	}

	if err := saveGeoJSON(w.Output, photos.FeatureCollection(placed)); err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(results), Written: len(placed), Skipped: len(failed)}
	log.Info().
		Str("path", w.Output).
		Int("total", stats.Total).
		Int("written", stats.Written).
		Int("skipped", stats.Skipped).
		Msg("Walks saved")

	return stats, nil
}
