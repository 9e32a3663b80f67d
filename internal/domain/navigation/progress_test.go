package navigation

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoute(t *testing.T) Route {
	t.Helper()
	legs := []Leg{
		{Distance: 1000, Duration: 100, Steps: []Step{
			{Instruction: "Head north", Distance: 400, Duration: 40},
			{Instruction: "Turn right", Distance: 600, Duration: 60},
		}},
		{Distance: 1000, Duration: 100, Steps: []Step{
			{Instruction: "Continue", Distance: 1000, Duration: 100},
			{Instruction: "Arrive", Distance: 0, Duration: 0},
		}},
	}
	path := orb.LineString{{106.0, 10.0}, {106.0, 10.01}, {106.01, 10.01}}
	wps := []Coordinate{{Latitude: 10.0, Longitude: 106.0}, {Latitude: 10.01, Longitude: 106.01}}
	r, err := NewRoute("encoded", 2000, 200, wps, legs, path)
	require.NoError(t, err)
	return r
}

func TestInitialProgress(t *testing.T) {
	r := testRoute(t)
	now := time.Now()

	snap := InitialProgress(r, now)
	assert.Equal(t, 2000.0, snap.DistanceRemaining)
	assert.Equal(t, 200.0, snap.DurationRemaining)
	assert.Zero(t, snap.FractionTraveled)
	assert.Zero(t, snap.CurrentStepIndex)
	assert.Zero(t, snap.CurrentLegIndex)
	require.NotNil(t, snap.Location)
	assert.InDelta(t, 10.0, snap.Location.Latitude, 1e-9)
	assert.Equal(t, now, snap.UpdatedAt)
}

func TestProgressAt(t *testing.T) {
	r := testRoute(t)

	tests := []struct {
		name      string
		traveled  float64
		fraction  float64
		legIndex  int
		stepIndex int
	}{
		{"start", 0, 0, 0, 0},
		{"inside first step", 399, 0.1995, 0, 0},
		{"second step", 400, 0.2, 0, 1},
		{"second leg", 1500, 0.75, 1, 0},
		{"arrived", 2000, 1, 1, 1},
		{"clamped past end", 5000, 1, 1, 1},
		{"clamped negative", -10, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := ProgressAt(r, tt.traveled, time.Now())
			assert.InDelta(t, tt.fraction, snap.FractionTraveled, 1e-9)
			assert.InDelta(t, 2000*(1-tt.fraction), snap.DistanceRemaining, 1e-9)
			assert.InDelta(t, 200*(1-tt.fraction), snap.DurationRemaining, 1e-9)
			assert.Equal(t, tt.legIndex, snap.CurrentLegIndex)
			assert.Equal(t, tt.stepIndex, snap.CurrentStepIndex)
			assert.NotNil(t, snap.Location)
		})
	}
}

func TestProgressAt_LocationMovesAlongPath(t *testing.T) {
	r := testRoute(t)

	start := ProgressAt(r, 0, time.Now()).Location
	end := ProgressAt(r, 2000, time.Now()).Location
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.InDelta(t, 10.01, end.Latitude, 1e-6)
	assert.InDelta(t, 106.01, end.Longitude, 1e-6)
	assert.NotEqual(t, *start, *end)
}

func TestProgressAt_NoPathNoSteps(t *testing.T) {
	r, err := NewRoute("", 100, 10, nil, nil, nil)
	require.NoError(t, err)

	snap := ProgressAt(r, 50, time.Now())
	assert.InDelta(t, 0.5, snap.FractionTraveled, 1e-9)
	assert.Nil(t, snap.Location)
	assert.Zero(t, snap.CurrentStepIndex)
}

func TestNewRoute_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		duration float64
	}{
		{"negative distance", -1, 10},
		{"negative duration", 1, -10},
		{"NaN distance", math.NaN(), 10},
		{"infinite distance", math.Inf(1), 10},
		{"infinite duration", 1, math.Inf(1)},
		{"negative infinite duration", 1, math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoute("", tt.distance, tt.duration, nil, nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestRoute_IsImmutable(t *testing.T) {
	r := testRoute(t)

	wps := r.Waypoints()
	wps[0].Latitude = 0
	legs := r.Legs()
	legs[0].Steps[0].Instruction = "changed"

	assert.Equal(t, 10.0, r.Waypoints()[0].Latitude)
	step, ok := r.Step(0, 0)
	require.True(t, ok)
	assert.Equal(t, "Head north", step.Instruction)
}
