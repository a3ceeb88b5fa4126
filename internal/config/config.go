// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/dmvmap/internal/geo"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	defaultBasemap     = "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png"
	defaultAttribution = "&copy; OpenStreetMap contributors &copy; CARTO"
	defaultDataDir     = "data"
	defaultZoom        = 11
	defaultThumbSize   = 256
	defaultQuality     = 80
	defaultConcurrency = 4
	defaultTimeout     = 10 * time.Second
	defaultCacheTTL    = time.Minute
)

// Config represents the root configuration file structure.
// Fields with a json tag are published to the page through /api/config.
type Config struct {
	Bounds          *geo.BoundingBox `yaml:"bounds,omitempty"   json:"bounds,omitempty"`
	Attribution     string           `yaml:"attribution"        json:"attribution"`
	Basemap         string           `yaml:"basemap"            json:"basemap"`
	DataDir         string           `yaml:"data_dir"           json:"-"`
	Overlays        []Overlay        `yaml:"overlays,omitempty" json:"overlays"`
	Restaurants     Restaurants      `yaml:"restaurants"        json:"-"`
	Walks           Walks            `yaml:"walks"              json:"-"`
	Recommendations Recommendations  `yaml:"recommendations"    json:"-"`
	Center          geo.GeoPoint     `yaml:"center"             json:"center"`
	Zoom            int              `yaml:"zoom"               json:"zoom"`
}

// Overlay is an ArcGIS feature layer drawn over the basemap.
type Overlay struct {
	Name        string  `yaml:"name"                   json:"name"`
	URL         string  `yaml:"url"                    json:"url"`
	Where       string  `yaml:"where,omitempty"        json:"where,omitempty"`
	Color       string  `yaml:"color,omitempty"        json:"color,omitempty"`
	FillColor   string  `yaml:"fill_color,omitempty"   json:"fillColor,omitempty"`
	MinZoom     int     `yaml:"min_zoom,omitempty"     json:"minZoom,omitempty"`
	MaxFeatures int     `yaml:"max_features,omitempty" json:"maxFeatures,omitempty"`
	Weight      float64 `yaml:"weight,omitempty"       json:"weight,omitempty"`
	FillOpacity float64 `yaml:"fill_opacity,omitempty" json:"fillOpacity,omitempty"`
}

// Restaurants locates the restaurant source and the normalized output.
type Restaurants struct {
	Source string `yaml:"source"` // file path or http(s) URL
	Output string `yaml:"output,omitempty"`
}

// GitHub points at a directory of photos in a repository.
type GitHub struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	Path  string `yaml:"path,omitempty"`
	Ref   string `yaml:"ref,omitempty"`
}

// Walks configures the dog-walk photo layer.
type Walks struct {
	GitHub         *GitHub  `yaml:"github,omitempty"`
	Dir            string   `yaml:"dir,omitempty"` // local photos, used when github is unset
	Output         string   `yaml:"output,omitempty"`
	ThumbDir       string   `yaml:"thumb_dir,omitempty"`
	URLPrefix      string   `yaml:"url_prefix,omitempty"`
	ThumbURLPrefix string   `yaml:"thumb_url_prefix,omitempty"`
	Fallback       []string `yaml:"fallback,omitempty"`
	ThumbSize      int      `yaml:"thumb_size,omitempty"`
	Quality        float32  `yaml:"quality,omitempty"`
	Concurrency    int      `yaml:"concurrency,omitempty"`
}

// Redis is the optional document cache.
type Redis struct {
	Addr string `yaml:"addr,omitempty"`
	DB   int    `yaml:"db,omitempty"`
}

// Recommendations configures the JSONBin document store. The access key is
// never read from the file.
type Recommendations struct {
	BinID    string        `yaml:"bin_id,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	Redis    Redis         `yaml:"redis,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// Enabled reports whether a bin is configured.
func (r Recommendations) Enabled() bool {
	return r.BinID != ""
}

// Load reads and parses the YAML configuration file from the specified path,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults fills every unset field.
func (c *Config) Defaults() {
	if c.Basemap == "" {
		c.Basemap = defaultBasemap
	}
	if c.Attribution == "" {
		c.Attribution = defaultAttribution
	}
	if c.Center == (geo.GeoPoint{}) {
		c.Center = geo.GeoPoint{Latitude: 38.9072, Longitude: -77.0369}
	}
	if c.Zoom <= 0 {
		c.Zoom = defaultZoom
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}

	if c.Restaurants.Output == "" {
		c.Restaurants.Output = filepath.Join(c.DataDir, "restaurants.geojson")
	}

	w := &c.Walks
	if w.Output == "" {
		w.Output = filepath.Join(c.DataDir, "walks.geojson")
	}
	if w.ThumbDir == "" {
		w.ThumbDir = filepath.Join(c.DataDir, "photos")
	}
	if w.ThumbURLPrefix == "" {
		w.ThumbURLPrefix = "/photos/"
	}
	if w.ThumbSize <= 0 {
		w.ThumbSize = defaultThumbSize
	}
	if w.Quality <= 0 {
		w.Quality = defaultQuality
	}
	if w.Concurrency <= 0 {
		w.Concurrency = defaultConcurrency
	}
	if w.GitHub != nil && w.GitHub.Ref == "" {
		w.GitHub.Ref = "main"
	}

	r := &c.Recommendations
	if r.Timeout <= 0 {
		r.Timeout = defaultTimeout
	}
	if r.CacheTTL <= 0 {
		r.CacheTTL = defaultCacheTTL
	}

	for i := range c.Overlays {
		if c.Overlays[i].MinZoom <= 0 {
			c.Overlays[i].MinZoom = c.Zoom
		}
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if _, err := geo.NewGeoPoint(c.Center.Latitude, c.Center.Longitude); err != nil {
		return fmt.Errorf("%w: center: %w", ErrInvalidConfig, err)
	}
	if c.Bounds != nil {
		if err := c.Bounds.Validate(); err != nil {
			return fmt.Errorf("%w: bounds: %w", ErrInvalidConfig, err)
		}
		if !c.Bounds.Contains(c.Center) {
			return fmt.Errorf("%w: center %v outside bounds", ErrInvalidConfig, c.Center)
		}
	}
	if c.Walks.Quality > 100 {
		return fmt.Errorf("%w: walks quality %v above 100", ErrInvalidConfig, c.Walks.Quality)
	}
	if gh := c.Walks.GitHub; gh != nil && (gh.Owner == "" || gh.Repo == "") {
		return fmt.Errorf("%w: walks github needs owner and repo", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Overlays))
	for i, o := range c.Overlays {
		if o.Name == "" || o.URL == "" {
			return fmt.Errorf("%w: overlay %d needs name and url", ErrInvalidConfig, i)
		}
		if seen[o.Name] {
			return fmt.Errorf("%w: duplicate overlay %q", ErrInvalidConfig, o.Name)
		}
		seen[o.Name] = true
	}

	return nil
}
