package navigation

import "fmt"

// MinWaypoints is the smallest waypoint count a route can be calculated for.
const MinWaypoints = 2

// RouteOptions describes a directions request.
type RouteOptions struct {
	Coordinates  []Coordinate
	Profile      Profile
	IncludeSteps bool
	// Overview is the geometry detail level requested from the service ("full", "simplified", "false").
	Overview string
}

// NewRouteOptions builds options with step detail and full overview geometry enabled.
func NewRouteOptions(coordinates []Coordinate, profile Profile) RouteOptions {
	if profile == "" {
		profile = DefaultProfile
	}
	return RouteOptions{
		Coordinates:  coordinates,
		Profile:      profile,
		IncludeSteps: true,
		Overview:     "full",
	}
}

// Validate checks the options before any network call is made.
func (o RouteOptions) Validate() error {
	if len(o.Coordinates) < MinWaypoints {
		return NewInvalidWaypointsError(fmt.Sprintf("At least %d waypoints are required", MinWaypoints))
	}
	for i, c := range o.Coordinates {
		if err := c.Validate(); err != nil {
			navErr := AsError(err)
			navErr.Message = fmt.Sprintf("waypoint %d: %s", i, navErr.Message)
			return navErr
		}
	}
	if !o.Profile.IsValid() {
		return NewInvalidProfileError(string(o.Profile))
	}
	return nil
}
