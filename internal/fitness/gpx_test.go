package fitness

import (
	"errors"
	"math"
	"testing"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/geo"
)

const twoPointGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>Morning Run</name>
    <type>running</type>
    <trkseg>
      <trkpt lat="13.70" lon="100.50">
        <ele>12.5</ele>
        <time>2023-06-01T06:00:00Z</time>
      </trkpt>
      <trkpt lat="13.81" lon="100.50">
        <ele>22.5</ele>
        <time>2023-06-01T06:10:00Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseGPXTwoPoints(t *testing.T) {
	data, err := ParseGPX([]byte(twoPointGPX))
	if err != nil {
		t.Fatalf("ParseGPX() error = %v", err)
	}

	if len(data.Coordinates) != 2 {
		t.Fatalf("got %d coordinates, want 2", len(data.Coordinates))
	}

	want := geo.Haversine(
		domain.Coordinate{Lat: 13.70, Lng: 100.50},
		domain.Coordinate{Lat: 13.81, Lng: 100.50},
	)
	if math.Abs(data.TotalDistanceMeters-want) > 0.01 {
		t.Errorf("distance = %f, want %f", data.TotalDistanceMeters, want)
	}
	if data.TotalDurationSeconds != 600 {
		t.Errorf("duration = %f, want 600", data.TotalDurationSeconds)
	}
	if data.ElevationGainMeters == nil || math.Abs(*data.ElevationGainMeters-10) > 0.001 {
		t.Errorf("elevation gain = %v, want 10", data.ElevationGainMeters)
	}
	if data.ActivityType == nil || *data.ActivityType != "running" {
		t.Errorf("activity type = %v, want running", data.ActivityType)
	}
	if data.StartTime == nil || data.StartTime.UTC().Hour() != 6 {
		t.Errorf("start time = %v, want 06:00", data.StartTime)
	}
}

func TestParseGPXMultipleSegments(t *testing.T) {
	doc := `<gpx><trk><trkseg>
      <trkpt lat="1.0" lon="1.0"></trkpt>
    </trkseg><trkseg>
      <trkpt lat="1.1" lon="1.0"></trkpt>
    </trkseg></trk><trk><trkseg>
      <trkpt lat="1.2" lon="1.0"></trkpt>
    </trkseg></trk></gpx>`
	data, err := ParseGPX([]byte(doc))
	if err != nil {
		t.Fatalf("ParseGPX() error = %v", err)
	}
	if len(data.Coordinates) != 3 {
		t.Errorf("points across tracks/segments = %d, want 3", len(data.Coordinates))
	}
	if data.TotalDistanceMeters <= 0 {
		t.Errorf("distance should be computed from samples, got %f", data.TotalDistanceMeters)
	}
	// No timestamps, no elevation: both optional outputs absent.
	if data.TotalDurationSeconds != 0 {
		t.Errorf("duration = %f, want 0", data.TotalDurationSeconds)
	}
	if data.ElevationGainMeters != nil {
		t.Errorf("elevation gain should be absent, got %v", data.ElevationGainMeters)
	}
}

func TestParseGPXInvalidDocument(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "not xml", body: "this is not xml"},
		{name: "wrong root element", body: "<foo><bar/></foo>"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGPX([]byte(tc.body))
			if err == nil {
				t.Fatal("expected error for invalid document")
			}
			var invalid *domain.InvalidFileError
			if !errors.As(err, &invalid) {
				t.Errorf("error %v is not InvalidFileError", err)
			}
		})
	}
}

func TestParseGPXEmptyButValid(t *testing.T) {
	data, err := ParseGPX([]byte(`<gpx><trk><trkseg></trkseg></trk></gpx>`))
	if err != nil {
		t.Fatalf("empty-but-valid document should not error, got %v", err)
	}
	if len(data.Coordinates) != 0 {
		t.Errorf("got %d coordinates, want 0", len(data.Coordinates))
	}
	if data.TotalDistanceMeters != 0 || data.TotalDurationSeconds != 0 {
		t.Errorf("empty document should have zero totals, got %f/%f",
			data.TotalDistanceMeters, data.TotalDurationSeconds)
	}
}

func TestParseGPXDropsOutOfRangePoints(t *testing.T) {
	// The second point is out of range even as semicircles and must be
	// dropped, not clamped.
	doc := `<gpx><trk><trkseg>
      <trkpt lat="13.7" lon="100.5"></trkpt>
      <trkpt lat="1e18" lon="100.5"></trkpt>
    </trkseg></trk></gpx>`
	data, err := ParseGPX([]byte(doc))
	if err != nil {
		t.Fatalf("ParseGPX() error = %v", err)
	}
	if len(data.Coordinates) != 1 {
		t.Errorf("malformed point should be dropped, got %d coordinates", len(data.Coordinates))
	}
}
