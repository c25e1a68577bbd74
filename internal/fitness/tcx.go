package fitness

import (
	"encoding/xml"
	"time"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/geo"
)

type tcxDocument struct {
	XMLName    xml.Name      `xml:"TrainingCenterDatabase"`
	Activities []tcxActivity `xml:"Activities>Activity"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	ID    string   `xml:"Id"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	TotalTimeSeconds *float64   `xml:"TotalTimeSeconds"`
	DistanceMeters   *float64   `xml:"DistanceMeters"`
	Tracks           []tcxTrack `xml:"Track"`
}

type tcxTrack struct {
	Points []tcxTrackpoint `xml:"Trackpoint"`
}

type tcxTrackpoint struct {
	Time           string       `xml:"Time"`
	Position       *tcxPosition `xml:"Position"`
	AltitudeMeters *float64     `xml:"AltitudeMeters"`
}

type tcxPosition struct {
	Lat float64 `xml:"LatitudeDegrees"`
	Lng float64 `xml:"LongitudeDegrees"`
}

// ParseTCX walks Activity > Lap > Track > Trackpoint. Lap totals are
// authoritative in this format: the sums of DistanceMeters and
// TotalTimeSeconds across laps are preferred over sample-derived
// values.
func ParseTCX(data []byte) (*domain.ActivityData, error) {
	var doc tcxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.InvalidFileError{
			FileType: domain.FileTypeTcx,
			Reason:   "not a valid TCX document",
			Err:      err,
		}
	}

	result := &domain.ActivityData{}

	var coords []domain.Coordinate
	var altitudes []*float64
	var firstTime, lastTime *time.Time
	var lapDistance, lapDuration float64
	var hasLapDistance, hasLapDuration bool

	for _, activity := range doc.Activities {
		for _, lap := range activity.Laps {
			if lap.DistanceMeters != nil {
				lapDistance += *lap.DistanceMeters
				hasLapDistance = true
			}
			if lap.TotalTimeSeconds != nil {
				lapDuration += *lap.TotalTimeSeconds
				hasLapDuration = true
			}
			for _, track := range lap.Tracks {
				for _, pt := range track.Points {
					if ts, err := time.Parse(time.RFC3339, pt.Time); err == nil {
						t := ts
						if firstTime == nil {
							firstTime = &t
						}
						lastTime = &t
					}
					if pt.Position == nil {
						continue
					}
					lat := geo.NormalizeLatitude(pt.Position.Lat)
					lng := geo.NormalizeLongitude(pt.Position.Lng)
					if lat == nil || lng == nil {
						continue
					}
					coords = append(coords, domain.Coordinate{Lat: *lat, Lng: *lng})
					altitudes = append(altitudes, pt.AltitudeMeters)
				}
			}
		}
	}

	result.Coordinates = coords

	if hasLapDistance {
		result.TotalDistanceMeters = lapDistance
	} else {
		result.TotalDistanceMeters = geo.Distance(coords)
	}
	if hasLapDuration {
		result.TotalDurationSeconds = lapDuration
	} else if firstTime != nil && lastTime != nil {
		result.TotalDurationSeconds = lastTime.Sub(*firstTime).Seconds()
	}

	result.ElevationGainMeters = geo.ElevationGain(altitudes)

	if len(doc.Activities) > 0 {
		activity := doc.Activities[0]
		if activity.Sport != "" {
			sport := activity.Sport
			result.ActivityType = &sport
		}
		// The activity identifier is its start timestamp.
		if ts, err := time.Parse(time.RFC3339, activity.ID); err == nil {
			result.StartTime = &ts
		}
	}
	if result.StartTime == nil {
		result.StartTime = firstTime
	}

	return result, nil
}
