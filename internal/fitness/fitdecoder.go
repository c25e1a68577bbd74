package fitness

import (
	"bytes"
	"context"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/basetype"
	"github.com/muktihari/fit/profile/filedef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/llun/fitfeed/internal/domain"
)

// FitDecoder turns raw FIT bytes into the structured session/record
// collections the normalizer consumes. The FIT wire protocol itself is
// out of scope here; this boundary keeps the decoder swappable.
type FitDecoder interface {
	Decode(ctx context.Context, data []byte) (*FitActivity, error)
}

// sdkFitDecoder adapts the muktihari/fit SDK to the FitDecoder boundary.
type sdkFitDecoder struct{}

// NewFitDecoder returns the production FIT decoder.
func NewFitDecoder() FitDecoder {
	return &sdkFitDecoder{}
}

func (d *sdkFitDecoder) Decode(ctx context.Context, data []byte) (*FitActivity, error) {
	dec := decoder.New(bytes.NewReader(data))
	fitFile, err := dec.DecodeWithContext(ctx)
	if err != nil {
		return nil, &domain.InvalidFileError{
			FileType: domain.FileTypeFit,
			Reason:   "could not decode FIT data",
			Err:      err,
		}
	}

	activity := filedef.NewActivity(fitFile.Messages...)

	out := &FitActivity{
		Sessions: make([]FitSession, 0, len(activity.Sessions)),
		Records:  make([]FitRecord, 0, len(activity.Records)),
	}

	for _, s := range activity.Sessions {
		session := FitSession{}
		if s.Sport != typedef.SportInvalid {
			sport := s.Sport.String()
			session.Sport = &sport
		}
		if s.SubSport != typedef.SubSportInvalid {
			subSport := s.SubSport.String()
			session.SubSport = &subSport
		}
		if !s.StartTime.IsZero() {
			start := s.StartTime
			session.StartTime = &start
		}
		if s.TotalDistance != basetype.Uint32Invalid {
			// Scale 100: centimeters on the wire.
			v := float64(s.TotalDistance) / 100
			session.TotalDistanceMeters = &v
		}
		if s.TotalElapsedTime != basetype.Uint32Invalid {
			// Scale 1000: milliseconds on the wire.
			v := float64(s.TotalElapsedTime) / 1000
			session.TotalElapsedSeconds = &v
		}
		if s.TotalTimerTime != basetype.Uint32Invalid {
			v := float64(s.TotalTimerTime) / 1000
			session.TotalTimerSeconds = &v
		}
		out.Sessions = append(out.Sessions, session)
	}

	for _, r := range activity.Records {
		record := FitRecord{}
		if !r.Timestamp.IsZero() {
			ts := r.Timestamp
			record.Timestamp = &ts
		}
		if r.PositionLat != basetype.Sint32Invalid && r.PositionLong != basetype.Sint32Invalid {
			// Raw semicircles; the geometry engine resolves the unit.
			lat := float64(r.PositionLat)
			lng := float64(r.PositionLong)
			record.PositionLat = &lat
			record.PositionLng = &lng
		}
		if alt := recordAltitude(r.EnhancedAltitude, r.Altitude); alt != nil {
			record.AltitudeMeters = alt
		}
		if r.Distance != basetype.Uint32Invalid {
			v := float64(r.Distance) / 100
			record.DistanceMeters = &v
		}
		out.Records = append(out.Records, record)
	}

	return out, nil
}

// recordAltitude prefers the enhanced altitude field and falls back to
// the legacy 16-bit one. Both use scale 5, offset 500.
func recordAltitude(enhanced uint32, legacy uint16) *float64 {
	if enhanced != basetype.Uint32Invalid {
		v := float64(enhanced)/5 - 500
		return &v
	}
	if legacy != basetype.Uint16Invalid {
		v := float64(legacy)/5 - 500
		return &v
	}
	return nil
}
