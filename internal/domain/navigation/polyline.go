package navigation

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

// Polyline precisions used by the directions service geometry formats.
const (
	PolylinePrecision5 = 5
	PolylinePrecision6 = 6
)

var polylineCodecs = map[int]polyline.Codec{
	PolylinePrecision5: {Dim: 2, Scale: 1e5},
	PolylinePrecision6: {Dim: 2, Scale: 1e6},
}

// PrecisionForGeometry returns the decoding precision for a "geometries" request value.
func PrecisionForGeometry(format string) int {
	if format == "polyline6" {
		return PolylinePrecision6
	}
	return PolylinePrecision5
}

// DecodePolyline decodes an encoded polyline into a line string of (lng, lat) points.
// Bytes outside the polyline alphabet, truncated values and trailing input are errors.
func DecodePolyline(encoded string, precision int) (orb.LineString, error) {
	codec, ok := polylineCodecs[precision]
	if !ok {
		return nil, fmt.Errorf("unsupported polyline precision %d", precision)
	}

	coords, rest, err := codec.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("failed to decode polyline: %d trailing bytes", len(rest))
	}

	ls := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		ls = append(ls, Coordinate{Latitude: c[0], Longitude: c[1]}.Point())
	}
	return ls, nil
}
