package geo

import (
	"math"
	"testing"

	"github.com/llun/fitfeed/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	testCases := []struct {
		name string
		a, b domain.Coordinate
		want float64
		tol  float64
	}{
		{
			name: "same point",
			a:    domain.Coordinate{Lat: 13.75, Lng: 100.5},
			b:    domain.Coordinate{Lat: 13.75, Lng: 100.5},
			want: 0,
			tol:  0.001,
		},
		{
			name: "one degree of latitude",
			a:    domain.Coordinate{Lat: 0, Lng: 0},
			b:    domain.Coordinate{Lat: 1, Lng: 0},
			// 1 degree of arc on a 6371km sphere.
			want: 6371000 * math.Pi / 180,
			tol:  1,
		},
		{
			name: "quarter circumference",
			a:    domain.Coordinate{Lat: 0, Lng: 0},
			b:    domain.Coordinate{Lat: 0, Lng: 90},
			want: 6371000 * math.Pi / 2,
			tol:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Haversine(tc.a, tc.b)
			if math.Abs(got-tc.want) > tc.tol {
				t.Errorf("Haversine() = %f, want %f (±%f)", got, tc.want, tc.tol)
			}
		})
	}
}

func TestDistanceSumsPairwise(t *testing.T) {
	coords := []domain.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0.1, Lng: 0},
		{Lat: 0.2, Lng: 0},
	}
	total := Distance(coords)
	expect := Haversine(coords[0], coords[1]) + Haversine(coords[1], coords[2])
	if math.Abs(total-expect) > 0.001 {
		t.Errorf("Distance() = %f, want %f", total, expect)
	}
	if Distance(coords[:1]) != 0 {
		t.Errorf("single point distance should be 0")
	}
	if Distance(nil) != 0 {
		t.Errorf("empty distance should be 0")
	}
}

func TestElevationGain(t *testing.T) {
	testCases := []struct {
		name    string
		samples []*float64
		want    *float64
	}{
		{
			name:    "only positive deltas accumulate",
			samples: []*float64{f(100), f(110), f(105), f(120)},
			want:    f(25),
		},
		{
			name:    "missing samples are skipped not zeroed",
			samples: []*float64{f(100), nil, f(110), nil, nil, f(130)},
			want:    f(30),
		},
		{
			name:    "pure descent yields absent",
			samples: []*float64{f(500), f(400), f(300)},
			want:    nil,
		},
		{
			name:    "no samples",
			samples: nil,
			want:    nil,
		},
		{
			name:    "all missing",
			samples: []*float64{nil, nil},
			want:    nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ElevationGain(tc.samples)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("ElevationGain() = %v, want %v", got, tc.want)
			}
			if got != nil && math.Abs(*got-*tc.want) > 0.001 {
				t.Errorf("ElevationGain() = %f, want %f", *got, *tc.want)
			}
		})
	}
}

func TestNormalizeLatitude(t *testing.T) {
	// 600000000 semicircles is ~50.29 degrees.
	got := NormalizeLatitude(600000000)
	if got == nil {
		t.Fatal("semicircle latitude should convert")
	}
	want := 600000000.0 * 180.0 / float64(int64(1)<<31)
	if math.Abs(*got-want) > 1e-9 {
		t.Errorf("NormalizeLatitude() = %f, want %f", *got, want)
	}
	if *got < -90 || *got > 90 {
		t.Errorf("converted latitude %f out of range", *got)
	}

	// In-range degrees pass through untouched.
	if got := NormalizeLatitude(-45.5); got == nil || *got != -45.5 {
		t.Errorf("in-range latitude should pass through, got %v", got)
	}

	// Out of range even as semicircles: dropped, not clamped.
	if got := NormalizeLatitude(math.MaxFloat64); got != nil {
		t.Errorf("unconvertible latitude should be dropped, got %f", *got)
	}
	if got := NormalizeLatitude(math.NaN()); got != nil {
		t.Error("NaN latitude should be dropped")
	}
}

func TestNormalizeLongitude(t *testing.T) {
	// 1200000000 semicircles is ~100.58 degrees: invalid as degrees is
	// false here (within ±180), so it passes through.
	if got := NormalizeLongitude(100.58); got == nil || *got != 100.58 {
		t.Errorf("in-range longitude should pass through, got %v", got)
	}

	// Beyond ±180: reinterpreted as semicircles.
	raw := 1500000000.0
	got := NormalizeLongitude(raw)
	if got == nil {
		t.Fatal("semicircle longitude should convert")
	}
	want := raw * 180.0 / float64(int64(1)<<31)
	if math.Abs(*got-want) > 1e-9 {
		t.Errorf("NormalizeLongitude() = %f, want %f", *got, want)
	}
}

func TestProject(t *testing.T) {
	// The origin projects to the center of the world pixel plane.
	x, y := Project(domain.Coordinate{Lat: 0, Lng: 0}, 0)
	if math.Abs(x-128) > 1e-9 || math.Abs(y-128) > 1e-9 {
		t.Errorf("Project(origin, 0) = (%f, %f), want (128, 128)", x, y)
	}

	// Each zoom level doubles the world size.
	x1, y1 := Project(domain.Coordinate{Lat: 40, Lng: -74}, 3)
	x2, y2 := Project(domain.Coordinate{Lat: 40, Lng: -74}, 4)
	if math.Abs(x2-2*x1) > 1e-6 || math.Abs(y2-2*y1) > 1e-6 {
		t.Errorf("zoom scaling broken: z3=(%f,%f) z4=(%f,%f)", x1, y1, x2, y2)
	}

	// Polar latitudes are clamped, not infinite.
	_, yPole := Project(domain.Coordinate{Lat: 90, Lng: 0}, 2)
	if math.IsInf(yPole, 0) || math.IsNaN(yPole) {
		t.Errorf("polar projection must be finite, got %f", yPole)
	}
	if yPole < 0 {
		t.Errorf("clamped pole should stay in the pixel plane, got %f", yPole)
	}
}
