package fitness

import (
	"math"
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func sp(v string) *string { return &v }

func tp(v time.Time) *time.Time { return &v }

// latSemicircles converts degrees to the raw semicircle unit used by
// FIT position fields.
func latSemicircles(deg float64) *float64 {
	v := deg * float64(int64(1)<<31) / 180.0
	return &v
}

func TestNormalizeFitActivitySessionTotalsWin(t *testing.T) {
	start := time.Date(2023, 6, 1, 6, 0, 0, 0, time.UTC)
	activity := &FitActivity{
		Sessions: []FitSession{{
			Sport:               sp("cycling"),
			StartTime:           tp(start),
			TotalDistanceMeters: fp(42195),
			TotalElapsedSeconds: fp(9000),
		}},
		Records: []FitRecord{
			{Timestamp: tp(start), DistanceMeters: fp(1)},
			{Timestamp: tp(start.Add(time.Minute)), DistanceMeters: fp(500)},
		},
	}

	data := NormalizeFitActivity(activity)
	// Session totals are returned verbatim, per-record samples ignored.
	if data.TotalDistanceMeters != 42195 {
		t.Errorf("distance = %f, want 42195", data.TotalDistanceMeters)
	}
	if data.TotalDurationSeconds != 9000 {
		t.Errorf("duration = %f, want 9000", data.TotalDurationSeconds)
	}
	if data.ActivityType == nil || *data.ActivityType != "cycling" {
		t.Errorf("activity type = %v, want cycling", data.ActivityType)
	}
	if data.StartTime == nil || !data.StartTime.Equal(start) {
		t.Errorf("start time = %v, want %v", data.StartTime, start)
	}
}

func TestNormalizeFitActivityRecordDistanceFallback(t *testing.T) {
	activity := &FitActivity{
		Sessions: []FitSession{{TotalTimerSeconds: fp(1200)}},
		Records: []FitRecord{
			{DistanceMeters: fp(100)},
			{DistanceMeters: fp(2500)},
			{DistanceMeters: fp(900)},
		},
	}
	data := NormalizeFitActivity(activity)
	// No session distance: the maximum cumulative record sample wins.
	if data.TotalDistanceMeters != 2500 {
		t.Errorf("distance = %f, want 2500", data.TotalDistanceMeters)
	}
	// Elapsed absent, timer present.
	if data.TotalDurationSeconds != 1200 {
		t.Errorf("duration = %f, want 1200", data.TotalDurationSeconds)
	}
}

func TestNormalizeFitActivityComputedFallbacks(t *testing.T) {
	start := time.Date(2023, 6, 1, 6, 0, 0, 0, time.UTC)
	activity := &FitActivity{
		Records: []FitRecord{
			{
				Timestamp:   tp(start),
				PositionLat: latSemicircles(13.70),
				PositionLng: latSemicircles(100.50),
			},
			{
				Timestamp:   tp(start.Add(10 * time.Minute)),
				PositionLat: latSemicircles(13.75),
				PositionLng: latSemicircles(100.50),
			},
		},
	}
	data := NormalizeFitActivity(activity)
	if len(data.Coordinates) != 2 {
		t.Fatalf("got %d coordinates, want 2", len(data.Coordinates))
	}
	if math.Abs(data.Coordinates[0].Lat-13.70) > 1e-6 {
		t.Errorf("normalized latitude = %f, want 13.70", data.Coordinates[0].Lat)
	}
	if data.TotalDistanceMeters <= 0 {
		t.Errorf("haversine fallback distance should be positive, got %f", data.TotalDistanceMeters)
	}
	if data.TotalDurationSeconds != 600 {
		t.Errorf("timestamp span duration = %f, want 600", data.TotalDurationSeconds)
	}
	if data.StartTime == nil || !data.StartTime.Equal(start) {
		t.Errorf("start time should fall back to first record, got %v", data.StartTime)
	}
}

func TestNormalizeFitActivityDropsBadPositions(t *testing.T) {
	activity := &FitActivity{
		Records: []FitRecord{
			{PositionLat: latSemicircles(13.70), PositionLng: latSemicircles(100.50)},
			{PositionLat: fp(4e18), PositionLng: latSemicircles(100.50)},
			{PositionLat: latSemicircles(13.71), PositionLng: latSemicircles(100.51)},
		},
	}
	data := NormalizeFitActivity(activity)
	if len(data.Coordinates) != 2 {
		t.Errorf("bad position should be dropped without aborting, got %d coordinates", len(data.Coordinates))
	}
}

func TestNormalizeFitActivitySubSportFallback(t *testing.T) {
	activity := &FitActivity{
		Sessions: []FitSession{{SubSport: sp("trail")}},
	}
	data := NormalizeFitActivity(activity)
	if data.ActivityType == nil || *data.ActivityType != "trail" {
		t.Errorf("activity type = %v, want trail", data.ActivityType)
	}
}

func TestNormalizeFitActivityElevationGain(t *testing.T) {
	activity := &FitActivity{
		Records: []FitRecord{
			{AltitudeMeters: fp(100)},
			{AltitudeMeters: nil},
			{AltitudeMeters: fp(130)},
			{AltitudeMeters: fp(120)},
		},
	}
	data := NormalizeFitActivity(activity)
	if data.ElevationGainMeters == nil || math.Abs(*data.ElevationGainMeters-30) > 0.001 {
		t.Errorf("elevation gain = %v, want 30", data.ElevationGainMeters)
	}
}

func TestNormalizeFitActivityEmpty(t *testing.T) {
	data := NormalizeFitActivity(&FitActivity{})
	if len(data.Coordinates) != 0 || data.TotalDistanceMeters != 0 || data.TotalDurationSeconds != 0 {
		t.Errorf("empty input should yield empty zeroed data, got %+v", data)
	}
	if data.ElevationGainMeters != nil || data.ActivityType != nil || data.StartTime != nil {
		t.Errorf("optional fields should be absent for empty input")
	}
}
