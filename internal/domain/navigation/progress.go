package navigation

import (
	"math"
	"time"
)

// ProgressSnapshot is a point-in-time measurement of how far along the route the traveler is.
type ProgressSnapshot struct {
	DistanceRemaining float64     `json:"distanceRemaining"`
	DurationRemaining float64     `json:"durationRemaining"`
	FractionTraveled  float64     `json:"fractionTraveled"`
	CurrentStepIndex  int         `json:"currentStepIndex"`
	CurrentLegIndex   int         `json:"currentLegIndex"`
	Location          *Coordinate `json:"location,omitempty"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// InitialProgress returns the snapshot at the start of a navigation along r.
func InitialProgress(r Route, now time.Time) ProgressSnapshot {
	snap := ProgressSnapshot{
		DistanceRemaining: r.Distance(),
		DurationRemaining: r.Duration(),
		UpdatedAt:         now,
	}
	if loc, ok := r.pointAt(0); ok {
		snap.Location = &loc
	}
	return snap
}

// ProgressAt computes the snapshot after distanceTraveled meters along r.
// The distance is clamped to [0, route distance].
func ProgressAt(r Route, distanceTraveled float64, now time.Time) ProgressSnapshot {
	total := r.Distance()
	traveled := math.Max(0, math.Min(distanceTraveled, total))

	fraction := 1.0
	if total > 0 {
		fraction = traveled / total
	}

	legIndex, stepIndex := r.locate(traveled)
	snap := ProgressSnapshot{
		DistanceRemaining: total - traveled,
		DurationRemaining: r.Duration() * (1 - fraction),
		FractionTraveled:  fraction,
		CurrentStepIndex:  stepIndex,
		CurrentLegIndex:   legIndex,
		UpdatedAt:         now,
	}
	if loc, ok := r.pointAt(traveled); ok {
		snap.Location = &loc
	}
	return snap
}

// SameStep reports whether two snapshots point at the same maneuver.
func (p ProgressSnapshot) SameStep(other ProgressSnapshot) bool {
	return p.CurrentLegIndex == other.CurrentLegIndex && p.CurrentStepIndex == other.CurrentStepIndex
}
