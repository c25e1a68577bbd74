// Package mapimage renders a static route preview for an activity,
// either through a paid static-map API or by compositing public raster
// tiles with a vector overlay.
package mapimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/geo"
	"github.com/llun/fitfeed/internal/logger"
)

const (
	// DefaultWidth and DefaultHeight are the preview dimensions used
	// when the caller does not override them.
	DefaultWidth  = 800
	DefaultHeight = 600

	// padding keeps the route away from the image edges when searching
	// for the tightest zoom.
	padding = 56

	minZoom = 2
	maxZoom = 18
)

var (
	backgroundColor = color.RGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}
	routeColor      = color.RGBA{R: 0x1a, G: 0x6f, B: 0xeb, A: 0xff}
	startColor      = color.RGBA{R: 0x2e, G: 0xa4, B: 0x4f, A: 0xff}
	endColor        = color.RGBA{R: 0xd6, G: 0x2c, B: 0x2c, A: 0xff}
)

// Config holds renderer settings. StaticMapURL plus APIKey enable the
// paid path; TileURL is the raster fallback template with z/x/y verbs.
type Config struct {
	StaticMapURL string
	APIKey       string
	TileURL      string
	Width        int
	Height       int
}

// Renderer produces route preview images.
type Renderer struct {
	client *resty.Client
	cfg    Config
}

// NewRenderer creates a Renderer with defaults applied.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.TileURL == "" {
		cfg.TileURL = "https://tile.openstreetmap.org/%d/%d/%d.png"
	}
	return &Renderer{
		client: resty.New().SetHeader("User-Agent", "fitfeed/1.0"),
		cfg:    cfg,
	}
}

// Render returns the preview image bytes for the route, or (nil, nil)
// when fewer than 2 usable points exist. When a paid API key is
// configured that path is tried first; any failure there falls back to
// the self-rendered tile composite instead of propagating.
func (r *Renderer) Render(ctx context.Context, coords []domain.Coordinate) ([]byte, error) {
	if len(coords) < 2 {
		return nil, nil
	}

	bounds, ok := boundingBox(coords)
	if !ok {
		return nil, nil
	}

	if r.cfg.APIKey != "" {
		data, err := r.renderStatic(ctx, coords)
		if err == nil {
			return data, nil
		}
		logger.FromContext(ctx).WithError(err).Warn("Static map API failed, falling back to tile render")
	}

	return r.renderTiles(ctx, coords, bounds)
}

type boxBounds struct {
	minLat, maxLat, minLng, maxLng float64
}

func boundingBox(coords []domain.Coordinate) (boxBounds, bool) {
	b := boxBounds{
		minLat: math.Inf(1), maxLat: math.Inf(-1),
		minLng: math.Inf(1), maxLng: math.Inf(-1),
	}
	for _, c := range coords {
		b.minLat = math.Min(b.minLat, c.Lat)
		b.maxLat = math.Max(b.maxLat, c.Lat)
		b.minLng = math.Min(b.minLng, c.Lng)
		b.maxLng = math.Max(b.maxLng, c.Lng)
	}
	for _, v := range []float64{b.minLat, b.maxLat, b.minLng, b.maxLng} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return b, false
		}
	}
	return b, true
}

// fitZoom returns the largest zoom level whose projected bounding box
// fits inside the padded viewport.
func (r *Renderer) fitZoom(bounds boxBounds) int {
	fitW := float64(r.cfg.Width - 2*padding)
	fitH := float64(r.cfg.Height - 2*padding)
	for zoom := maxZoom; zoom > minZoom; zoom-- {
		x0, y0 := geo.Project(domain.Coordinate{Lat: bounds.maxLat, Lng: bounds.minLng}, zoom)
		x1, y1 := geo.Project(domain.Coordinate{Lat: bounds.minLat, Lng: bounds.maxLng}, zoom)
		if x1-x0 <= fitW && y1-y0 <= fitH {
			return zoom
		}
	}
	return minZoom
}

func (r *Renderer) renderTiles(ctx context.Context, coords []domain.Coordinate, bounds boxBounds) ([]byte, error) {
	zoom := r.fitZoom(bounds)
	width, height := r.cfg.Width, r.cfg.Height

	x0, y0 := geo.Project(domain.Coordinate{Lat: bounds.maxLat, Lng: bounds.minLng}, zoom)
	x1, y1 := geo.Project(domain.Coordinate{Lat: bounds.minLat, Lng: bounds.maxLng}, zoom)

	// Pixel window centered on the route bounding box.
	left := (x0+x1)/2 - float64(width)/2
	top := (y0+y1)/2 - float64(height)/2

	tileX0 := int(math.Floor(left / geo.TileSize))
	tileX1 := int(math.Floor((left + float64(width) - 1) / geo.TileSize))
	tileY0 := int(math.Floor(top / geo.TileSize))
	tileY1 := int(math.Floor((top + float64(height) - 1) / geo.TileSize))

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	type fetchedTile struct {
		x, y int
		img  image.Image
	}

	tileCount := (tileX1 - tileX0 + 1) * (tileY1 - tileY0 + 1)
	tiles := make([]fetchedTile, 0, tileCount)
	var mu sync.Mutex
	var wg sync.WaitGroup

	maxIndex := 1 << zoom
	for ty := tileY0; ty <= tileY1; ty++ {
		for tx := tileX0; tx <= tileX1; tx++ {
			if ty < 0 || ty >= maxIndex {
				// Above or below the tile pyramid: neutral filler.
				continue
			}
			wg.Add(1)
			go func(tx, ty int) {
				defer wg.Done()
				// The world wraps horizontally.
				wrappedX := ((tx % maxIndex) + maxIndex) % maxIndex
				img, err := r.fetchTile(ctx, zoom, wrappedX, ty)
				if err != nil {
					logger.FromContext(ctx).WithFields(logger.Fields{
						"zoom": zoom, "x": wrappedX, "y": ty,
					}).WithError(err).Warn("Tile fetch failed, using filler")
					return
				}
				mu.Lock()
				tiles = append(tiles, fetchedTile{x: tx, y: ty, img: img})
				mu.Unlock()
			}(tx, ty)
		}
	}
	wg.Wait()

	for _, t := range tiles {
		offsetX := int(math.Round(float64(t.x)*geo.TileSize - left))
		offsetY := int(math.Round(float64(t.y)*geo.TileSize - top))
		rect := image.Rect(offsetX, offsetY, offsetX+geo.TileSize, offsetY+geo.TileSize)
		draw.Draw(canvas, rect, t.img, image.Point{}, draw.Src)
	}

	r.drawOverlay(canvas, coords, zoom, left, top)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode preview image: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fetchTile(ctx context.Context, zoom, x, y int) (image.Image, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf(r.cfg.TileURL, zoom, x, y))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tile: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("tile server status %d", resp.StatusCode())
	}
	img, _, err := image.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tile: %w", err)
	}
	return img, nil
}

// drawOverlay paints the route polyline and the start/end markers at
// their pixel offsets.
func (r *Renderer) drawOverlay(canvas *image.RGBA, coords []domain.Coordinate, zoom int, left, top float64) {
	points := make([]image.Point, len(coords))
	for i, c := range coords {
		px, py := geo.Project(c, zoom)
		points[i] = image.Point{X: int(math.Round(px - left)), Y: int(math.Round(py - top))}
	}

	for i := 1; i < len(points); i++ {
		drawLine(canvas, points[i-1], points[i], routeColor, 2)
	}
	drawDisc(canvas, points[0], 6, startColor)
	drawDisc(canvas, points[len(points)-1], 6, endColor)
}

// drawLine rasterizes a thick segment by stamping discs along it.
func drawLine(img *image.RGBA, a, b image.Point, c color.Color, radius int) {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		drawDisc(img, a, radius, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := image.Point{
			X: a.X + int(math.Round(dx*t)),
			Y: a.Y + int(math.Round(dy*t)),
		}
		drawDisc(img, p, radius, c)
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, c color.Color) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > radius*radius {
				continue
			}
			px, py := center.X+x, center.Y+y
			if (image.Point{X: px, Y: py}).In(img.Bounds()) {
				img.Set(px, py, c)
			}
		}
	}
}
