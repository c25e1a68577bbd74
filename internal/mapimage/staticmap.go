package mapimage

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/fitness"
)

// staticMapMaxPoints bounds the polyline embedded in the paid API
// request URL.
const staticMapMaxPoints = 100

// renderStatic requests a preview from the paid static-map API. The
// response bytes are returned unmodified; any transport error or
// non-success status is an error for the caller to fall back on.
func (r *Renderer) renderStatic(ctx context.Context, coords []domain.Coordinate) ([]byte, error) {
	line := EncodePolyline(fitness.Downsample(coords, staticMapMaxPoints))

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"style":    "osm-bright",
			"width":    strconv.Itoa(r.cfg.Width),
			"height":   strconv.Itoa(r.cfg.Height),
			"padding":  strconv.Itoa(padding),
			"geometry": "polyline:" + line,
			"apiKey":   r.cfg.APIKey,
		}).
		Get(r.cfg.StaticMapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to call static map API: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("static map API status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// EncodePolyline encodes coordinates with the standard polyline
// algorithm (5 decimal digits precision) used by static-map APIs.
func EncodePolyline(coords []domain.Coordinate) string {
	var sb strings.Builder
	var prevLat, prevLng int64
	for _, c := range coords {
		lat := int64(round5(c.Lat))
		lng := int64(round5(c.Lng))
		encodePolylineValue(&sb, lat-prevLat)
		encodePolylineValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func round5(v float64) float64 {
	scaled := v * 1e5
	if scaled < 0 {
		return float64(int64(scaled - 0.5))
	}
	return float64(int64(scaled + 0.5))
}

func encodePolylineValue(sb *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte((0x20|(u&0x1f))+63))
		u >>= 5
	}
	sb.WriteByte(byte(u + 63))
}
