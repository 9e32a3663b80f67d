package trip

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

// Trip is the persisted record of one navigation that was started and then stopped.
type Trip struct {
	id               uuid.UUID
	sessionID        uuid.UUID
	waypoints        []navigation.Coordinate
	distance         float64
	duration         float64
	fractionTraveled float64
	startedAt        time.Time
	endedAt          time.Time
	createdAt        time.Time
}

// NewTrip creates a Trip from the route summary announced at start and the final progress.
func NewTrip(sessionID uuid.UUID, summary navigation.RouteSummary, fractionTraveled float64, startedAt, endedAt time.Time) (*Trip, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("session ID is required")
	}
	if endedAt.Before(startedAt) {
		return nil, fmt.Errorf("trip ends before it starts")
	}
	if fractionTraveled < 0 || fractionTraveled > 1 {
		return nil, fmt.Errorf("fraction traveled %v out of range", fractionTraveled)
	}

	waypoints := make([]navigation.Coordinate, 0, len(summary.Waypoints))
	for _, pair := range summary.Waypoints {
		if len(pair) < 2 {
			return nil, fmt.Errorf("malformed waypoint %v", pair)
		}
		waypoints = append(waypoints, navigation.Coordinate{Latitude: pair[0], Longitude: pair[1]})
	}

	return &Trip{
		id:               uuid.New(),
		sessionID:        sessionID,
		waypoints:        waypoints,
		distance:         summary.Distance,
		duration:         summary.Duration,
		fractionTraveled: fractionTraveled,
		startedAt:        startedAt.UTC(),
		endedAt:          endedAt.UTC(),
		createdAt:        time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Trip from persistence.
func Reconstruct(id, sessionID uuid.UUID, waypoints []navigation.Coordinate, distance, duration, fractionTraveled float64, startedAt, endedAt, createdAt time.Time) *Trip {
	return &Trip{
		id:               id,
		sessionID:        sessionID,
		waypoints:        waypoints,
		distance:         distance,
		duration:         duration,
		fractionTraveled: fractionTraveled,
		startedAt:        startedAt,
		endedAt:          endedAt,
		createdAt:        createdAt,
	}
}

// Getters.
func (t *Trip) ID() uuid.UUID                      { return t.id }
func (t *Trip) SessionID() uuid.UUID               { return t.sessionID }
func (t *Trip) Waypoints() []navigation.Coordinate { return t.waypoints }
func (t *Trip) Distance() float64                  { return t.distance }
func (t *Trip) Duration() float64                  { return t.duration }
func (t *Trip) FractionTraveled() float64          { return t.fractionTraveled }
func (t *Trip) StartedAt() time.Time               { return t.startedAt }
func (t *Trip) EndedAt() time.Time                 { return t.endedAt }
func (t *Trip) CreatedAt() time.Time               { return t.createdAt }

// DistanceTraveled returns the meters covered before the trip was stopped.
func (t *Trip) DistanceTraveled() float64 {
	return t.distance * t.fractionTraveled
}
