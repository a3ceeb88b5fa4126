// Package processor builds the static data files served by the site.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// Stats summarizes one processing run.
type Stats struct {
	Total   int  `json:"total"`
	Written int  `json:"written"`
	Skipped int  `json:"skipped"`
	Cached  bool `json:"cached,omitempty"`
}

// fresh reports whether path exists and may be kept.
func fresh(path string, force bool) bool {
	if force {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// fetch reads a local file or downloads an http(s) URL.
func fetch(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	log.Info().Str("url", source).Msg("Downloading source")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// saveGeoJSON writes the feature collection through a temporary file so a
// reader never sees a partial document.
func saveGeoJSON(path string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if err := json.NewEncoder(f).Encode(fc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}
