package navigation

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Step is a single maneuver of a route leg.
type Step struct {
	Instruction       string  `json:"instruction"`
	Name              string  `json:"name,omitempty"`
	Distance          float64 `json:"distance"`
	Duration          float64 `json:"duration"`
	VoiceInstruction  string  `json:"voiceInstruction,omitempty"`
	BannerInstruction string  `json:"bannerInstruction,omitempty"`
}

// Leg is the part of a route between two consecutive waypoints.
type Leg struct {
	Summary  string  `json:"summary,omitempty"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Steps    []Step  `json:"steps,omitempty"`
}

// Route is an immutable value produced by a successful directions fetch.
type Route struct {
	geometry   string
	distance   float64
	duration   float64
	waypoints  []Coordinate
	legs       []Leg
	path       orb.LineString
	pathLength float64
}

// NewRoute creates a Route. path may be nil when the geometry could not be decoded.
func NewRoute(geometry string, distance, duration float64, waypoints []Coordinate, legs []Leg, path orb.LineString) (Route, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return Route{}, fmt.Errorf("invalid route distance %v", distance)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return Route{}, fmt.Errorf("invalid route duration %v", duration)
	}

	r := Route{
		geometry:  geometry,
		distance:  distance,
		duration:  duration,
		waypoints: append([]Coordinate(nil), waypoints...),
		legs:      cloneLegs(legs),
	}
	if len(path) > 0 {
		r.path = path.Clone()
		r.pathLength = geo.LengthHaversine(r.path)
	}
	return r, nil
}

// --- Getters ---

// Geometry returns the encoded route path as delivered by the service.
func (r Route) Geometry() string { return r.geometry }

// Distance returns the route length in meters.
func (r Route) Distance() float64 { return r.distance }

// Duration returns the expected travel time in seconds.
func (r Route) Duration() float64 { return r.duration }

// Waypoints returns the ordered coordinates the route was requested for.
func (r Route) Waypoints() []Coordinate { return append([]Coordinate(nil), r.waypoints...) }

// Legs returns a copy of the route legs.
func (r Route) Legs() []Leg { return cloneLegs(r.legs) }

// Path returns a copy of the decoded geometry, or nil when none is available.
func (r Route) Path() orb.LineString {
	if r.path == nil {
		return nil
	}
	return r.path.Clone()
}

// Step returns the step at the given leg and step index.
func (r Route) Step(legIndex, stepIndex int) (Step, bool) {
	if legIndex < 0 || legIndex >= len(r.legs) {
		return Step{}, false
	}
	steps := r.legs[legIndex].Steps
	if stepIndex < 0 || stepIndex >= len(steps) {
		return Step{}, false
	}
	return steps[stepIndex], true
}

// locate returns the leg and step index covering distanceTraveled meters from the origin.
func (r Route) locate(distanceTraveled float64) (legIndex, stepIndex int) {
	var covered float64
	lastLeg, lastStep := 0, 0
	for li, leg := range r.legs {
		for si, step := range leg.Steps {
			lastLeg, lastStep = li, si
			if distanceTraveled < covered+step.Distance {
				return li, si
			}
			covered += step.Distance
		}
	}
	return lastLeg, lastStep
}

// pointAt interpolates the position after distanceTraveled meters along the decoded path.
func (r Route) pointAt(distanceTraveled float64) (Coordinate, bool) {
	if len(r.path) == 0 {
		return Coordinate{}, false
	}
	if len(r.path) == 1 || r.pathLength == 0 || r.distance == 0 {
		return CoordinateFromPoint(r.path[0]), true
	}
	// The service distance follows the road network, the path length is haversine.
	along := distanceTraveled / r.distance * r.pathLength
	p, _ := geo.PointAtDistanceAlongLine(r.path, along)
	return CoordinateFromPoint(p), true
}

func cloneLegs(legs []Leg) []Leg {
	if legs == nil {
		return nil
	}
	out := make([]Leg, len(legs))
	for i, l := range legs {
		out[i] = l
		out[i].Steps = append([]Step(nil), l.Steps...)
	}
	return out
}
