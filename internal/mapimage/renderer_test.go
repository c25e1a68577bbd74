package mapimage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/llun/fitfeed/internal/domain"
)

var routeCoords = []domain.Coordinate{
	{Lat: 13.70, Lng: 100.50},
	{Lat: 13.72, Lng: 100.52},
	{Lat: 13.75, Lng: 100.55},
}

func tilePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 220, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test tile: %v", err)
	}
	return buf.Bytes()
}

func TestRenderTooFewPoints(t *testing.T) {
	r := NewRenderer(Config{})
	for _, coords := range [][]domain.Coordinate{nil, {{Lat: 1, Lng: 1}}} {
		data, err := r.Render(t.Context(), coords)
		if err != nil {
			t.Errorf("Render() error = %v, want nil", err)
		}
		if data != nil {
			t.Errorf("Render() with %d points should produce no image", len(coords))
		}
	}
}

func TestRenderStaticMapSingleCall(t *testing.T) {
	var calls int64
	want := []byte("static-map-image-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt64(&calls, 1)
		if req.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("missing apiKey query parameter")
		}
		if req.URL.Query().Get("geometry") == "" {
			t.Errorf("missing polyline geometry")
		}
		w.Write(want)
	}))
	defer server.Close()

	r := NewRenderer(Config{StaticMapURL: server.URL, APIKey: "test-key"})
	data, err := r.Render(t.Context(), routeCoords)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("static map API called %d times, want exactly 1", got)
	}
	if !bytes.Equal(data, want) {
		t.Errorf("response bytes must be returned unmodified")
	}
}

func TestRenderFallsBackToTiles(t *testing.T) {
	static := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer static.Close()

	tile := tilePNG(t)
	var tileCalls int64
	tiles := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt64(&tileCalls, 1)
		w.Write(tile)
	}))
	defer tiles.Close()

	r := NewRenderer(Config{
		StaticMapURL: static.URL,
		APIKey:       "test-key",
		TileURL:      tiles.URL + "/%d/%d/%d.png",
		Width:        400,
		Height:       300,
	})
	data, err := r.Render(t.Context(), routeCoords)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("fallback render produced no image")
	}
	if atomic.LoadInt64(&tileCalls) == 0 {
		t.Error("tile server was never hit on fallback")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("fallback output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Errorf("image size = %dx%d, want 400x300", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRenderTilesSurvivesTileFailures(t *testing.T) {
	tiles := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer tiles.Close()

	r := NewRenderer(Config{TileURL: tiles.URL + "/%d/%d/%d.png", Width: 320, Height: 240})
	data, err := r.Render(t.Context(), routeCoords)
	if err != nil {
		t.Fatalf("Render() error = %v, want filler-tile composite", err)
	}
	if len(data) == 0 {
		t.Fatal("render with failing tiles should still produce an image")
	}
}

func TestFitZoomTightest(t *testing.T) {
	r := NewRenderer(Config{Width: 800, Height: 600})

	small := boxBounds{minLat: 13.700, maxLat: 13.705, minLng: 100.500, maxLng: 100.505}
	large := boxBounds{minLat: 10, maxLat: 20, minLng: 95, maxLng: 105}

	zSmall := r.fitZoom(small)
	zLarge := r.fitZoom(large)
	if zSmall <= zLarge {
		t.Errorf("smaller extent should fit a larger zoom: small=%d large=%d", zSmall, zLarge)
	}
	if zSmall < minZoom || zSmall > maxZoom || zLarge < minZoom || zLarge > maxZoom {
		t.Errorf("zoom out of [%d,%d]: %d, %d", minZoom, maxZoom, zSmall, zLarge)
	}
}

func TestEncodePolyline(t *testing.T) {
	// Reference vector from the polyline algorithm specification.
	coords := []domain.Coordinate{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}
	want := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	if got := EncodePolyline(coords); got != want {
		t.Errorf("EncodePolyline() = %q, want %q", got, want)
	}
	if got := EncodePolyline(nil); got != "" {
		t.Errorf("empty input should encode to empty string, got %q", got)
	}
}
