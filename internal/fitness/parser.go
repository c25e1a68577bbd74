// Package fitness normalizes heterogeneous fitness file formats
// (FIT, GPX, TCX) into one ActivityData shape.
package fitness

import (
	"context"
	"path"
	"strings"

	"github.com/llun/fitfeed/internal/domain"
)

// DefaultMaxRoutePoints bounds the number of coordinates handed to any
// rendering consumer. Distance and duration are always computed on the
// full-resolution sample set before downsampling.
const DefaultMaxRoutePoints = 500

// Parser dispatches uploads by declared file type to the format
// specific extractors. The FIT decoder is an external collaborator
// injected at construction.
type Parser struct {
	fitDecoder FitDecoder
}

// NewParser creates a Parser backed by the given FIT decoder.
func NewParser(fitDecoder FitDecoder) *Parser {
	return &Parser{fitDecoder: fitDecoder}
}

// Parse normalizes data of the declared fileType into ActivityData.
// An unsupported fileType is a contract error (ErrUnsupportedFileType);
// a structurally invalid document returns *domain.InvalidFileError. A
// valid document with zero usable points is not an error.
func (p *Parser) Parse(ctx context.Context, fileType domain.FileType, data []byte) (*domain.ActivityData, error) {
	switch fileType {
	case domain.FileTypeFit:
		activity, err := p.fitDecoder.Decode(ctx, data)
		if err != nil {
			return nil, err
		}
		return NormalizeFitActivity(activity), nil
	case domain.FileTypeGpx:
		return ParseGPX(data)
	case domain.FileTypeTcx:
		return ParseTCX(data)
	default:
		// Archives and anything else must be unpacked by the caller
		// before they reach the normalizer.
		return nil, domain.ErrUnsupportedFileType
	}
}

// FileTypeFromName maps a file name extension to a supported activity
// file type.
func FileTypeFromName(name string) (domain.FileType, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".fit":
		return domain.FileTypeFit, true
	case ".gpx":
		return domain.FileTypeGpx, true
	case ".tcx":
		return domain.FileTypeTcx, true
	case ".zip":
		return domain.FileTypeZip, true
	}
	return "", false
}

// Downsample reduces coords to at most maxPoints using a uniform stride
// and forces inclusion of the final point. It must only run after the
// distance and duration computation.
func Downsample(coords []domain.Coordinate, maxPoints int) []domain.Coordinate {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxRoutePoints
	}
	if len(coords) <= maxPoints {
		return coords
	}

	stride := (len(coords) + maxPoints - 1) / maxPoints
	out := make([]domain.Coordinate, 0, maxPoints)
	for i := 0; i < len(coords); i += stride {
		out = append(out, coords[i])
	}
	// The final point replaces the last strided one when appending it
	// would push the result past maxPoints.
	last := coords[len(coords)-1]
	if out[len(out)-1] != last {
		if len(out) == maxPoints {
			out[len(out)-1] = last
		} else {
			out = append(out, last)
		}
	}
	return out
}
