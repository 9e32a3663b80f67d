package store

import (
	"sync"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

// RouteStore holds at most one current route and one progress snapshot.
// One lock guards both so readers never observe a half-cleared store.
type RouteStore struct {
	mu       sync.RWMutex
	route    *navigation.Route
	progress *navigation.ProgressSnapshot
}

// Snapshot is a consistent read of the store.
type Snapshot struct {
	Route    *navigation.Route
	Progress *navigation.ProgressSnapshot
}

// NewRouteStore creates an empty RouteStore.
func NewRouteStore() *RouteStore {
	return &RouteStore{}
}

// SetCurrentRoute replaces any stored route.
func (s *RouteStore) SetCurrentRoute(r navigation.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = &r
}

// CurrentRoute returns the stored route, if any.
func (s *RouteStore) CurrentRoute() (navigation.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.route == nil {
		return navigation.Route{}, false
	}
	return *s.route, true
}

// SetProgress replaces any stored progress snapshot.
func (s *RouteStore) SetProgress(p navigation.ProgressSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = &p
}

// Progress returns the stored progress snapshot, if any.
func (s *RouteStore) Progress() (navigation.ProgressSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.progress == nil {
		return navigation.ProgressSnapshot{}, false
	}
	return *s.progress, true
}

// Snapshot returns the route and progress read under the same lock.
func (s *RouteStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var snap Snapshot
	if s.route != nil {
		r := *s.route
		snap.Route = &r
	}
	if s.progress != nil {
		p := *s.progress
		snap.Progress = &p
	}
	return snap
}

// Clear removes both the route and the progress.
func (s *RouteStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = nil
	s.progress = nil
}
