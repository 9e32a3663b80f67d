package navigation

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CoordinateFromPoint converts an orb point (lng, lat) into a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Validate returns an INVALID_COORDINATE error when the coordinate is unusable.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return NewInvalidCoordinateError(fmt.Sprintf("coordinate %v,%v is not finite", c.Latitude, c.Longitude))
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return NewInvalidCoordinateError(fmt.Sprintf("latitude %v out of range", c.Latitude))
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return NewInvalidCoordinateError(fmt.Sprintf("longitude %v out of range", c.Longitude))
	}
	return nil
}

// Point returns the coordinate as an orb point (x = longitude, y = latitude).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// Pair returns the host wire form [lat, lng].
func (c Coordinate) Pair() []float64 {
	return []float64{c.Latitude, c.Longitude}
}
