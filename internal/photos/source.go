package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var imageRegex = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

// IsImage reports whether a file name has one of the processed image extensions.
func IsImage(name string) bool {
	return imageRegex.MatchString(name)
}

// Source lists and opens photo files.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads photos from a local directory.
type DirSource struct {
	Dir string
}

// List returns image file names in the directory, sorted.
func (s DirSource) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}

// Open opens a photo by name. Names are reduced to their base to stay inside Dir.
func (s DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Dir, filepath.Base(name)))
}

// GitHubSource lists photos through the GitHub contents API and downloads
// them from their raw URLs.
type GitHubSource struct {
	Client  *http.Client
	APIBase string // default https://api.github.com
	Owner   string
	Repo    string
	Path    string
	Ref     string
	Token   string

	mu        sync.RWMutex
	downloads map[string]string
}

type githubEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

func (s *GitHubSource) apiBase() string {
	if s.APIBase != "" {
		return strings.TrimRight(s.APIBase, "/")
	}
	return "https://api.github.com"
}

func (s *GitHubSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// List fetches the directory listing and keeps image files.
func (s *GitHubSource) List(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.apiBase(), s.Owner, s.Repo, strings.Trim(s.Path, "/"))
	if s.Ref != "" {
		url += "?ref=" + s.Ref
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github contents: status %d", resp.StatusCode)
	}

	var entries []githubEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("github contents: %w", err)
	}

	downloads := make(map[string]string, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" || !IsImage(e.Name) {
			continue
		}
		names = append(names, e.Name)
		downloads[e.Name] = e.DownloadURL
	}
	sort.Strings(names)

	s.mu.Lock()
	s.downloads = downloads
	s.mu.Unlock()

	return names, nil
}

// Open downloads one photo. Names not seen by List use the raw.githubusercontent.com layout.
func (s *GitHubSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	url := s.downloads[name]
	s.mu.RUnlock()

	if url == "" {
		ref := s.Ref
		if ref == "" {
			ref = "HEAD"
		}
		url = fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s/%s",
			s.Owner, s.Repo, ref, strings.Trim(s.Path, "/"), name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download %s: status %d", name, resp.StatusCode)
	}

	return resp.Body, nil
}

// FallbackSource uses a fixed list of names when the wrapped source cannot list.
type FallbackSource struct {
	Source
	Names []string
}

// List returns the wrapped listing, or Names if listing fails.
func (s FallbackSource) List(ctx context.Context) ([]string, error) {
	names, err := s.Source.List(ctx)
	if err == nil {
		return names, nil
	}
	if len(s.Names) == 0 {
		return nil, err
	}

	log.Warn().
		Err(err).
		Int("fallback_count", len(s.Names)).
		Msg("Photo listing failed, using fallback list")

	out := make([]string, 0, len(s.Names))
	for _, n := range s.Names {
		if IsImage(n) {
			out = append(out, filepath.Base(n))
		}
	}

	return out, nil
}
