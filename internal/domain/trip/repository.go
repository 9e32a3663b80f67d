package trip

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// TripRepository defines persistence operations for recorded trips.
type TripRepository interface {
	// Save persists a new trip.
	Save(ctx context.Context, trip *Trip) error

	// FindByID retrieves a trip by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Trip, error)

	// ListRecent retrieves trips ordered by end time, newest first, with pagination.
	ListRecent(ctx context.Context, page, limit int) ([]*Trip, int64, error)
}

// ErrTripNotFound is returned when no trip matches the requested id.
var ErrTripNotFound = errors.New("trip not found")
