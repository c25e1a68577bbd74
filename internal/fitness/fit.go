package fitness

import (
	"time"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/geo"
)

// FitActivity is the structured output of an external FIT decoder:
// session summaries plus the per-second record stream. Optional fields
// are pointers so that absent and zero stay distinguishable.
type FitActivity struct {
	Sessions []FitSession
	Records  []FitRecord
}

// FitSession mirrors the FIT session message fields the normalizer
// consumes.
type FitSession struct {
	Sport               *string
	SubSport            *string
	StartTime           *time.Time
	TotalDistanceMeters *float64
	TotalElapsedSeconds *float64
	TotalTimerSeconds   *float64
}

// FitRecord mirrors one FIT record message. Position values are raw:
// either degrees or semicircles, resolved by the geometry engine.
type FitRecord struct {
	Timestamp      *time.Time
	PositionLat    *float64
	PositionLng    *float64
	AltitudeMeters *float64
	// DistanceMeters is the cumulative distance sample.
	DistanceMeters *float64
}

// NormalizeFitActivity converges decoded FIT sessions and records on
// ActivityData.
//
// Distance preference: session total_distance, else the maximum
// cumulative record distance, else the haversine sum of coordinates.
// Duration preference: session total_elapsed_time, else total_timer_time,
// else the span between the first and last record timestamp. Records
// whose position fails semicircle normalization are dropped from the
// coordinate sequence without aborting the parse.
func NormalizeFitActivity(activity *FitActivity) *domain.ActivityData {
	data := &domain.ActivityData{}

	coords := make([]domain.Coordinate, 0, len(activity.Records))
	altitudes := make([]*float64, 0, len(activity.Records))
	var maxRecordDistance *float64
	var firstTime, lastTime *time.Time

	for i := range activity.Records {
		rec := &activity.Records[i]

		if rec.PositionLat != nil && rec.PositionLng != nil {
			lat := geo.NormalizeLatitude(*rec.PositionLat)
			lng := geo.NormalizeLongitude(*rec.PositionLng)
			if lat != nil && lng != nil {
				coords = append(coords, domain.Coordinate{Lat: *lat, Lng: *lng})
			}
		}

		altitudes = append(altitudes, rec.AltitudeMeters)

		if rec.DistanceMeters != nil {
			if maxRecordDistance == nil || *rec.DistanceMeters > *maxRecordDistance {
				maxRecordDistance = rec.DistanceMeters
			}
		}
		if rec.Timestamp != nil {
			if firstTime == nil {
				firstTime = rec.Timestamp
			}
			lastTime = rec.Timestamp
		}
	}

	var session *FitSession
	if len(activity.Sessions) > 0 {
		session = &activity.Sessions[0]
	}

	switch {
	case session != nil && session.TotalDistanceMeters != nil:
		data.TotalDistanceMeters = *session.TotalDistanceMeters
	case maxRecordDistance != nil:
		data.TotalDistanceMeters = *maxRecordDistance
	default:
		data.TotalDistanceMeters = geo.Distance(coords)
	}

	switch {
	case session != nil && session.TotalElapsedSeconds != nil:
		data.TotalDurationSeconds = *session.TotalElapsedSeconds
	case session != nil && session.TotalTimerSeconds != nil:
		data.TotalDurationSeconds = *session.TotalTimerSeconds
	case firstTime != nil && lastTime != nil:
		data.TotalDurationSeconds = lastTime.Sub(*firstTime).Seconds()
	}

	if session != nil {
		if session.Sport != nil {
			data.ActivityType = session.Sport
		} else if session.SubSport != nil {
			data.ActivityType = session.SubSport
		}
		data.StartTime = session.StartTime
	}
	if data.StartTime == nil {
		data.StartTime = firstTime
	}

	data.Coordinates = coords
	data.ElevationGainMeters = geo.ElevationGain(altitudes)
	return data
}
