package navigation

// SessionState represents where a navigation session is in its lifecycle.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateRouteReady SessionState = "route_ready"
	StateNavigating SessionState = "navigating"
	StatePaused     SessionState = "paused"
)

// validTransitions defines the state machine for session state transitions.
// Every state may return to idle through stop.
var validTransitions = map[SessionState][]SessionState{
	StateIdle:       {StateRouteReady, StateIdle},
	StateRouteReady: {StateRouteReady, StateNavigating, StateIdle},
	StateNavigating: {StateNavigating, StatePaused, StateIdle},
	StatePaused:     {StateNavigating, StatePaused, StateIdle},
}

// IsValid returns true if the state is a recognized session state.
func (s SessionState) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this state to the target is allowed.
func (s SessionState) CanTransitionTo(target SessionState) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsActive returns true while a navigation is running or paused.
func (s SessionState) IsActive() bool {
	return s == StateNavigating || s == StatePaused
}

// String returns the string representation of the state.
func (s SessionState) String() string {
	return string(s)
}
