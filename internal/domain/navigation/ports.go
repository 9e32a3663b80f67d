package navigation

import "context"

// DirectionsClient fetches routes from a remote directions service.
type DirectionsClient interface {
	// FetchRoute performs exactly one request for already-validated options.
	FetchRoute(ctx context.Context, options RouteOptions) (Route, error)
}

// EventEmitter accepts events for best-effort asynchronous delivery.
// Emit never blocks and never reports delivery failures.
type EventEmitter interface {
	Emit(event Event)
}
