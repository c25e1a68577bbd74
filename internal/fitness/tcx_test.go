package fitness

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/llun/fitfeed/internal/domain"
)

const lapTCX = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase>
  <Activities>
    <Activity Sport="Biking">
      <Id>2023-06-01T07:00:00Z</Id>
      <Lap StartTime="2023-06-01T07:00:00Z">
        <TotalTimeSeconds>1800</TotalTimeSeconds>
        <DistanceMeters>12345.6</DistanceMeters>
        <Track>
          <Trackpoint>
            <Time>2023-06-01T07:00:00Z</Time>
            <Position>
              <LatitudeDegrees>13.70</LatitudeDegrees>
              <LongitudeDegrees>100.50</LongitudeDegrees>
            </Position>
            <AltitudeMeters>5</AltitudeMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2023-06-01T07:30:00Z</Time>
            <Position>
              <LatitudeDegrees>13.75</LatitudeDegrees>
              <LongitudeDegrees>100.55</LongitudeDegrees>
            </Position>
            <AltitudeMeters>25</AltitudeMeters>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

func TestParseTCXLapTotalsAreAuthoritative(t *testing.T) {
	data, err := ParseTCX([]byte(lapTCX))
	if err != nil {
		t.Fatalf("ParseTCX() error = %v", err)
	}

	// Lap-reported totals win over the sample-derived values.
	if data.TotalDistanceMeters != 12345.6 {
		t.Errorf("distance = %f, want 12345.6", data.TotalDistanceMeters)
	}
	if data.TotalDurationSeconds != 1800 {
		t.Errorf("duration = %f, want 1800", data.TotalDurationSeconds)
	}

	if len(data.Coordinates) != 2 {
		t.Errorf("got %d coordinates, want 2", len(data.Coordinates))
	}
	if data.ActivityType == nil || *data.ActivityType != "Biking" {
		t.Errorf("activity type = %v, want Biking", data.ActivityType)
	}
	if data.ElevationGainMeters == nil || math.Abs(*data.ElevationGainMeters-20) > 0.001 {
		t.Errorf("elevation gain = %v, want 20", data.ElevationGainMeters)
	}

	wantStart := time.Date(2023, 6, 1, 7, 0, 0, 0, time.UTC)
	if data.StartTime == nil || !data.StartTime.Equal(wantStart) {
		t.Errorf("start time = %v, want %v", data.StartTime, wantStart)
	}
}

func TestParseTCXSampleFallback(t *testing.T) {
	// No lap totals: distance and duration come from the samples, start
	// time from the first sample since the identifier is not a timestamp.
	doc := `<TrainingCenterDatabase><Activities><Activity Sport="Running">
      <Id>workout-42</Id>
      <Lap>
        <Track>
          <Trackpoint>
            <Time>2023-06-01T07:00:00Z</Time>
            <Position><LatitudeDegrees>13.70</LatitudeDegrees><LongitudeDegrees>100.50</LongitudeDegrees></Position>
          </Trackpoint>
          <Trackpoint>
            <Time>2023-06-01T07:05:00Z</Time>
            <Position><LatitudeDegrees>13.72</LatitudeDegrees><LongitudeDegrees>100.50</LongitudeDegrees></Position>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity></Activities></TrainingCenterDatabase>`
	data, err := ParseTCX([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTCX() error = %v", err)
	}
	if data.TotalDistanceMeters <= 0 {
		t.Errorf("sample-derived distance should be positive, got %f", data.TotalDistanceMeters)
	}
	if data.TotalDurationSeconds != 300 {
		t.Errorf("duration = %f, want 300", data.TotalDurationSeconds)
	}
	wantStart := time.Date(2023, 6, 1, 7, 0, 0, 0, time.UTC)
	if data.StartTime == nil || !data.StartTime.Equal(wantStart) {
		t.Errorf("start time = %v, want first sample %v", data.StartTime, wantStart)
	}
}

func TestParseTCXMultipleLapsSum(t *testing.T) {
	doc := `<TrainingCenterDatabase><Activities><Activity Sport="Running">
      <Id>2023-06-01T07:00:00Z</Id>
      <Lap><TotalTimeSeconds>600</TotalTimeSeconds><DistanceMeters>1000</DistanceMeters></Lap>
      <Lap><TotalTimeSeconds>660</TotalTimeSeconds><DistanceMeters>1100</DistanceMeters></Lap>
    </Activity></Activities></TrainingCenterDatabase>`
	data, err := ParseTCX([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTCX() error = %v", err)
	}
	if data.TotalDistanceMeters != 2100 {
		t.Errorf("summed lap distance = %f, want 2100", data.TotalDistanceMeters)
	}
	if data.TotalDurationSeconds != 1260 {
		t.Errorf("summed lap duration = %f, want 1260", data.TotalDurationSeconds)
	}
	if len(data.Coordinates) != 0 {
		t.Errorf("trackless laps should yield no coordinates, got %d", len(data.Coordinates))
	}
}

func TestParseTCXInvalidDocument(t *testing.T) {
	_, err := ParseTCX([]byte("<nope/>"))
	if err == nil {
		t.Fatal("expected error for invalid document")
	}
	var invalid *domain.InvalidFileError
	if !errors.As(err, &invalid) {
		t.Errorf("error %v is not InvalidFileError", err)
	}
	if invalid.FileType != domain.FileTypeTcx {
		t.Errorf("file type = %s, want tcx", invalid.FileType)
	}
}
