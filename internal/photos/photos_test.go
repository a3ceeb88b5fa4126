package photos_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/dmvmap/internal/geo"
	"github.com/woozymasta/dmvmap/internal/photos"
)

// --- Fakes ---

type memSource struct {
	files   map[string][]byte
	listErr error
}

func (m *memSource) List(ctx context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	return names, nil
}

func (m *memSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

var dcTags = geo.GPSTags{
	GPSLatitude: []float64{38, 54, 25.92}, GPSLatitudeRef: "N",
	GPSLongitude: []float64{77, 2, 12.84}, GPSLongitudeRef: "W",
	DateTime: "2025:07:31 19:36:33",
}

// --- Tests ---

func TestIsImage(t *testing.T) {
	for name, want := range map[string]bool{
		"PXL_20250731_193633228.jpg": true,
		"walk.JPEG":                  true,
		"a.png":                      true,
		"b.GIF":                      true,
		"notes.txt":                  false,
		"jpg":                        false,
		"photo.jpg.bak":              false,
	} {
		if got := photos.IsImage(name); got != want {
			t.Errorf("IsImage(%q): expected %v, got %v", name, want, got)
		}
	}
}

func TestCaptionAndThumbName(t *testing.T) {
	if got := photos.Caption("2025:07:31"); got != "Dog Walk - 2025:07:31" {
		t.Errorf("unexpected caption %q", got)
	}
	if got := photos.Caption(""); got != "Dog Walk - Unknown date" {
		t.Errorf("unexpected caption %q", got)
	}
	if got := photos.ThumbName("photos/PXL_1.jpg"); got != "PXL_1.webp" {
		t.Errorf("unexpected thumb name %q", got)
	}
}

func TestThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))

	got := photos.Thumbnail(img, 100)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 50 {
		t.Errorf("expected 100x50, got %v", got.Bounds())
	}

	tall := photos.Thumbnail(image.NewRGBA(image.Rect(0, 0, 90, 300)), 150)
	if tall.Bounds().Dx() != 45 || tall.Bounds().Dy() != 150 {
		t.Errorf("expected 45x150, got %v", tall.Bounds())
	}

	small := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if photos.Thumbnail(small, 100) != image.Image(small) {
		t.Error("small image should be returned unchanged")
	}
}

func TestProcessNames_Success(t *testing.T) {
	thumbs := t.TempDir()
	src := &memSource{files: map[string][]byte{"walk.png": pngBytes(t, 64, 32)}}

	opts := photos.Options{
		ReadGPS:        func(io.Reader) (geo.GPSTags, error) { return dcTags, nil },
		ThumbDir:       thumbs,
		URLPrefix:      "/photos",
		ThumbURLPrefix: "/thumbs",
		ThumbSize:      16,
	}

	results := photos.ProcessNames(context.Background(), src, []string{"walk.png"}, opts)
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results %+v", results)
	}

	p := results[0].Photo
	if p.URL != "/photos/walk.png" || p.IconURL != "/thumbs/walk.webp" {
		t.Errorf("unexpected URLs %q %q", p.URL, p.IconURL)
	}
	if p.Caption != "Dog Walk - 2025:07:31" {
		t.Errorf("unexpected caption %q", p.Caption)
	}
	if p.Location.Latitude < 38.9071 || p.Location.Latitude > 38.9073 {
		t.Errorf("unexpected location %v", p.Location)
	}

	info, err := os.Stat(filepath.Join(thumbs, "walk.webp"))
	if err != nil || info.Size() == 0 {
		t.Errorf("thumbnail not written: %v", err)
	}
}

func TestProcessNames_PerItemIsolation(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"good.png":  pngBytes(t, 8, 8),
		"nogps.png": pngBytes(t, 8, 8),
		"bad.png":   pngBytes(t, 8, 8),
	}}

	opts := photos.Options{
		ReadGPS: func(r io.Reader) (geo.GPSTags, error) {
			return dcTags, nil
		},
		Concurrency: 2,
	}
	readers := map[string]func(io.Reader) (geo.GPSTags, error){
		"nogps.png": func(io.Reader) (geo.GPSTags, error) { return geo.GPSTags{}, photos.ErrNoGPS },
		"bad.png": func(io.Reader) (geo.GPSTags, error) {
			bad := dcTags
			bad.GPSLatitude = []float64{38, 75, 0}
			return bad, nil
		},
	}

	names := []string{"good.png", "nogps.png", "missing.png", "bad.png"}
	var results []photos.Result
	for _, n := range names {
		o := opts
		if f, ok := readers[n]; ok {
			o.ReadGPS = f
		}
		results = append(results, photos.ProcessNames(context.Background(), src, []string{n}, o)...)
	}

	placed, failed := photos.Partition(results)
	if len(placed) != 1 || placed[0].Name != "good.png" {
		t.Fatalf("expected only good.png placed, got %+v", placed)
	}
	if len(failed) != 3 {
		t.Fatalf("expected 3 failures, got %d", len(failed))
	}
	if !photos.IsNoGPS(failed[0].Err) {
		t.Errorf("expected no-GPS failure, got %v", failed[0].Err)
	}
	if !errors.Is(failed[1].Err, os.ErrNotExist) {
		t.Errorf("expected missing file, got %v", failed[1].Err)
	}
	if !errors.Is(failed[2].Err, geo.ErrInvalidAngle) {
		t.Errorf("expected ErrInvalidAngle, got %v", failed[2].Err)
	}
}

func TestProcessNames_Order(t *testing.T) {
	files := map[string][]byte{}
	var names []string
	for i := 0; i < 20; i++ {
		n := fmt.Sprintf("p%02d.png", i)
		files[n] = pngBytes(t, 4, 4)
		names = append(names, n)
	}

	opts := photos.Options{
		ReadGPS:     func(io.Reader) (geo.GPSTags, error) { return dcTags, nil },
		Concurrency: 5,
	}
	results := photos.ProcessNames(context.Background(), &memSource{files: files}, names, opts)

	for i, r := range results {
		if r.Name != names[i] || r.Err != nil {
			t.Errorf("position %d: expected %s ok, got %s (%v)", i, names[i], r.Name, r.Err)
		}
	}
}

func TestProcessNames_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &memSource{files: map[string][]byte{"a.png": pngBytes(t, 4, 4)}}
	results := photos.ProcessNames(ctx, src, []string{"a.png"}, photos.Options{})

	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestReadGPS_NotEXIF(t *testing.T) {
	_, err := photos.ReadGPS(strings.NewReader("definitely not an image"))
	if !errors.Is(err, photos.ErrNoGPS) {
		t.Errorf("expected ErrNoGPS, got %v", err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.jpg", "a.PNG", "readme.md"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	src := photos.DirSource{Dir: dir}
	names, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(names, ",") != "a.PNG,b.jpg" {
		t.Errorf("unexpected listing %v", names)
	}

	rc, err := src.Open(context.Background(), "../"+filepath.Base(dir)+"/b.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = rc.Close()
}

func TestGitHubSource(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/site/contents/photos":
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("missing token header")
			}
			_, _ = fmt.Fprintf(w, `[
			  {"name":"walk.jpg","type":"file","download_url":"%[1]s/raw/walk.jpg"},
			  {"name":"notes.txt","type":"file","download_url":"%[1]s/raw/notes.txt"},
			  {"name":"old.png","type":"dir","download_url":null}
			]`, srv.URL)
		case "/raw/walk.jpg":
			_, _ = w.Write([]byte("jpeg-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := &photos.GitHubSource{APIBase: srv.URL, Owner: "owner", Repo: "site", Path: "/photos/", Token: "tok"}

	names, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "walk.jpg" {
		t.Fatalf("unexpected names %v", names)
	}

	rc, err := src.Open(context.Background(), "walk.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = rc.Close() }()

	body, _ := io.ReadAll(rc)
	if string(body) != "jpeg-bytes" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestFallbackSource(t *testing.T) {
	src := photos.FallbackSource{
		Source: &memSource{listErr: errors.New("rate limited")},
		Names:  []string{"photos/PXL_20250731_193633228.jpg", "photos/readme.txt"},
	}

	names, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "PXL_20250731_193633228.jpg" {
		t.Errorf("unexpected fallback names %v", names)
	}

	empty := photos.FallbackSource{Source: &memSource{listErr: errors.New("down")}}
	if _, err := empty.List(context.Background()); err == nil {
		t.Error("expected error without fallback names")
	}
}

func TestFeatureCollection(t *testing.T) {
	fc := photos.FeatureCollection([]photos.Photo{{
		Name: "a.jpg", URL: "/photos/a.jpg", IconURL: "/thumbs/a.webp", Caption: "Dog Walk - Unknown date",
		Location: geo.GeoPoint{Latitude: 38.9, Longitude: -77},
	}})

	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["iconUrl"] != "/thumbs/a.webp" {
		t.Errorf("unexpected properties %v", fc.Features[0].Properties)
	}
}
