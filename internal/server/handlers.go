// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/dmvmap/internal/config"
	"github.com/woozymasta/dmvmap/internal/geo"
	"github.com/woozymasta/dmvmap/internal/metrics"
	"github.com/woozymasta/dmvmap/internal/photos"
	"github.com/woozymasta/dmvmap/internal/recs"
	"github.com/woozymasta/dmvmap/internal/restaurants"

	"github.com/rs/zerolog/log"
)

const (
	etagCap      = 64
	maxBodyBytes = 64 << 10
)

// ErrBadBBox is returned for a malformed bbox query parameter.
var ErrBadBBox = errors.New("bbox must be south,west,north,east")

// Routes registers every endpoint on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.HandleIndex)
	mux.HandleFunc("GET /favicon.ico", s.HandleFavicon)
	mux.HandleFunc("GET /api/config", s.HandleConfig)
	mux.HandleFunc("GET /api/restaurants", s.HandleRestaurants)
	mux.HandleFunc("GET /api/restaurants/cuisines", s.HandleCuisines)
	mux.HandleFunc("GET /api/restaurants.geojson", s.HandleRestaurantsGeoJSON)
	mux.HandleFunc("GET /api/walks.geojson", s.HandleWalks)
	mux.HandleFunc("GET /photos/{name}", s.HandlePhoto)
	mux.HandleFunc("GET /photos/originals/{name}", s.HandleOriginal)
	mux.HandleFunc("GET /api/recs", s.HandleRecsList)
	mux.HandleFunc("POST /api/recs", s.HandleRecsAdd)
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleFavicon serves the site icon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleConfig serves the map settings the page starts from.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		*config.Config
		Recs bool `json:"recs"`
	}{s.Config, s.Recs != nil})
}

// parseBBox reads "south,west,north,east". An empty value means no filter.
func parseBBox(raw string) (*geo.BoundingBox, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, ErrBadBBox
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, ErrBadBBox
		}
		v[i] = f
	}

	box := geo.BoundingBox{South: v[0], West: v[1], North: v[2], East: v[3]}
	if err := box.Validate(); err != nil {
		return nil, err
	}

	return &box, nil
}

// HandleRestaurants serves the dashboard view for the visible area and the
// cuisine selection.
func (s *ServerContext) HandleRestaurants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	box, err := parseBBox(q.Get("bbox"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var cuisines []string
	for _, c := range q["cuisine"] {
		for _, part := range strings.Split(c, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cuisines = append(cuisines, part)
			}
		}
	}

	writeJSON(w, http.StatusOK, s.Dataset().View(box, restaurants.NewSelection(cuisines...)))
}

// HandleCuisines serves the cuisine legend.
func (s *ServerContext) HandleCuisines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Dataset().Cuisines())
}

// HandleRestaurantsGeoJSON serves the normalized restaurant points.
func (s *ServerContext) HandleRestaurantsGeoJSON(w http.ResponseWriter, r *http.Request) {
	if !s.serveFile(w, r, s.Config.Restaurants.Output, "application/geo+json") {
		http.NotFound(w, r)
	}
}

// HandleWalks serves the dog-walk photo points.
func (s *ServerContext) HandleWalks(w http.ResponseWriter, r *http.Request) {
	if !s.serveFile(w, r, s.Config.Walks.Output, "application/geo+json") {
		http.NotFound(w, r)
	}
}

// HandlePhoto serves a WebP thumbnail.
func (s *ServerContext) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".webp") {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	if !s.serveFile(w, r, filepath.Join(s.Config.Walks.ThumbDir, name), "image/webp") {
		http.NotFound(w, r)
	}
}

// HandleOriginal serves a full-size photo from the local walks directory.
func (s *ServerContext) HandleOriginal(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if s.Config.Walks.Dir == "" || name != filepath.Base(name) || !photos.IsImage(name) {
		http.NotFound(w, r)
		return
	}

	if !s.serveFile(w, r, filepath.Join(s.Config.Walks.Dir, name), "") {
		http.NotFound(w, r)
	}
}

// HandleRecsList serves the recommendation markers.
func (s *ServerContext) HandleRecsList(w http.ResponseWriter, r *http.Request) {
	if s.Recs == nil {
		writeError(w, http.StatusNotFound, "recommendations are disabled")
		return
	}

	markers, err := s.Recs.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read recommendations")
		writeError(w, http.StatusBadGateway, "recommendation store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"markers": markers, "count": len(markers)})
}

type addRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
	recs.Recommendation
}

// HandleRecsAdd stores a new recommendation.
func (s *ServerContext) HandleRecsAdd(w http.ResponseWriter, r *http.Request) {
	if s.Recs == nil {
		writeError(w, http.StatusNotFound, "recommendations are disabled")
		return
	}

	var req addRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	loc, err := geo.NewGeoPoint(*req.Lat, *req.Lng)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	marker, err := s.Recs.Add(r.Context(), loc, req.Recommendation)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, marker)
	case errors.Is(err, recs.ErrMissingField), errors.Is(err, geo.ErrInvalidGeometry):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("Failed to add recommendation")
		writeError(w, http.StatusBadGateway, "recommendation store unavailable")
	}
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	if w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", "public, no-cache")
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
