package fitness

import (
	"encoding/xml"
	"time"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/geo"
)

type gpxDocument struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Type     string       `xml:"type"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Ele  *float64 `xml:"ele"`
	Time string   `xml:"time"`
}

// ParseGPX walks every track and segment of a GPX document and computes
// distance and duration from the samples; GPX carries no authoritative
// totals. A document that does not parse as a track structure is a hard
// error, not a partial result.
func ParseGPX(data []byte) (*domain.ActivityData, error) {
	var doc gpxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.InvalidFileError{
			FileType: domain.FileTypeGpx,
			Reason:   "not a valid GPX document",
			Err:      err,
		}
	}

	result := &domain.ActivityData{}

	var coords []domain.Coordinate
	var altitudes []*float64
	var firstTime, lastTime *time.Time

	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, pt := range segment.Points {
				lat := geo.NormalizeLatitude(pt.Lat)
				lng := geo.NormalizeLongitude(pt.Lon)
				if lat == nil || lng == nil {
					continue
				}
				coords = append(coords, domain.Coordinate{Lat: *lat, Lng: *lng})
				altitudes = append(altitudes, pt.Ele)

				if ts, err := time.Parse(time.RFC3339, pt.Time); err == nil {
					t := ts
					if firstTime == nil {
						firstTime = &t
					}
					lastTime = &t
				}
			}
		}
	}

	result.Coordinates = coords
	result.TotalDistanceMeters = geo.Distance(coords)
	if firstTime != nil && lastTime != nil {
		result.TotalDurationSeconds = lastTime.Sub(*firstTime).Seconds()
	}
	result.ElevationGainMeters = geo.ElevationGain(altitudes)
	result.StartTime = firstTime

	if len(doc.Tracks) > 0 && doc.Tracks[0].Type != "" {
		activityType := doc.Tracks[0].Type
		result.ActivityType = &activityType
	}

	return result, nil
}
