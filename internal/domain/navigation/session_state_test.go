package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionState_Transitions(t *testing.T) {
	tests := []struct {
		from, to SessionState
		want     bool
	}{
		{StateIdle, StateRouteReady, true},
		{StateIdle, StateNavigating, false},
		{StateIdle, StatePaused, false},
		{StateRouteReady, StateNavigating, true},
		{StateRouteReady, StatePaused, false},
		{StateNavigating, StatePaused, true},
		{StateNavigating, StateRouteReady, false},
		{StatePaused, StateNavigating, true},
		{StatePaused, StateRouteReady, false},
		{StateNavigating, StateIdle, true},
		{StatePaused, StateIdle, true},
		{StateRouteReady, StateIdle, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSessionState_IsActive(t *testing.T) {
	assert.False(t, StateIdle.IsActive())
	assert.False(t, StateRouteReady.IsActive())
	assert.True(t, StateNavigating.IsActive())
	assert.True(t, StatePaused.IsActive())
}

func TestSessionState_UnknownState(t *testing.T) {
	unknown := SessionState("finished")
	assert.False(t, unknown.IsValid())
	assert.False(t, unknown.CanTransitionTo(StateIdle))
}
