// Package geo provides the geodesic and map-projection primitives shared
// by the format normalizer and the map renderer.
package geo

import (
	"math"

	"github.com/llun/fitfeed/internal/domain"
)

const (
	// EarthRadiusMeters is the mean Earth radius used by Haversine.
	EarthRadiusMeters = 6371000.0

	// TileSize is the pixel size of one Web-Mercator raster tile.
	TileSize = 256

	// MaxMercatorLatitude bounds the projection; beyond it the Mercator
	// y coordinate diverges.
	MaxMercatorLatitude = 85.05112878

	// semicirclesPerDegree converts the 32-bit angular unit used by
	// binary fitness formats: degrees = semicircles * 180 / 2^31.
	semicirclesPerDegree = float64(1<<31) / 180.0
)

// Haversine returns the great-circle distance in meters between a and b.
func Haversine(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Distance sums the pairwise Haversine distances over the full sequence.
func Distance(coords []domain.Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += Haversine(coords[i-1], coords[i])
	}
	return total
}

// ElevationGain accumulates the positive altitude deltas between
// consecutive present samples. Missing samples are skipped, not treated
// as zero. Returns nil when no ascent data exists.
func ElevationGain(samples []*float64) *float64 {
	var gain float64
	var prev *float64
	for _, s := range samples {
		if s == nil {
			continue
		}
		if prev != nil && *s > *prev {
			gain += *s - *prev
		}
		prev = s
	}
	if gain <= 0 {
		return nil
	}
	return &gain
}

// NormalizeLatitude accepts a raw latitude in degrees or semicircles and
// returns it in degrees, or nil when the value is out of range either
// way. Malformed points are dropped, never clamped.
func NormalizeLatitude(raw float64) *float64 {
	return normalizeAngle(raw, 90)
}

// NormalizeLongitude accepts a raw longitude in degrees or semicircles
// and returns it in degrees, or nil when out of range either way.
func NormalizeLongitude(raw float64) *float64 {
	return normalizeAngle(raw, 180)
}

func normalizeAngle(raw, limit float64) *float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil
	}
	if math.Abs(raw) <= limit {
		v := raw
		return &v
	}
	// Out of degree range: reinterpret as semicircles.
	converted := raw / semicirclesPerDegree
	if math.Abs(converted) <= limit {
		return &converted
	}
	return nil
}

// Project maps a coordinate to global Web-Mercator pixel coordinates at
// the given zoom level. Latitude is clamped to the Mercator bound
// before projecting.
func Project(c domain.Coordinate, zoom int) (x, y float64) {
	lat := c.Lat
	if lat > MaxMercatorLatitude {
		lat = MaxMercatorLatitude
	} else if lat < -MaxMercatorLatitude {
		lat = -MaxMercatorLatitude
	}

	worldSize := float64(TileSize) * math.Exp2(float64(zoom))
	x = (c.Lng + 180) / 360 * worldSize

	latRad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * worldSize
	return x, y
}
