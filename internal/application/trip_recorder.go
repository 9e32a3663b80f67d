package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
	tripDomain "github.com/track-asia/service-navigation/internal/domain/trip"
)

type startedTrip struct {
	summary   navigation.RouteSummary
	startedAt time.Time
}

// TripRecorder is an event sink that persists a trip for every navigation that
// was started and later stopped.
type TripRecorder struct {
	repo   tripDomain.TripRepository
	logger *zap.Logger

	mu      sync.Mutex
	started map[uuid.UUID]startedTrip
}

// NewTripRecorder creates a new TripRecorder.
func NewTripRecorder(repo tripDomain.TripRepository, logger *zap.Logger) *TripRecorder {
	return &TripRecorder{
		repo:    repo,
		logger:  logger,
		started: make(map[uuid.UUID]startedTrip),
	}
}

// Deliver records Started events and saves a trip on the matching Stopped event.
func (r *TripRecorder) Deliver(ctx context.Context, event navigation.Event) error {
	switch event.Type {
	case navigation.EventStarted:
		summary, ok := event.Data.(navigation.RouteSummary)
		if !ok {
			return fmt.Errorf("unexpected Started payload %T", event.Data)
		}
		r.mu.Lock()
		r.started[event.SessionID] = startedTrip{summary: summary, startedAt: event.Timestamp}
		r.mu.Unlock()
		return nil

	case navigation.EventStopped:
		r.mu.Lock()
		pending, ok := r.started[event.SessionID]
		delete(r.started, event.SessionID)
		r.mu.Unlock()
		if !ok {
			return nil
		}
		return r.save(ctx, event, pending)

	default:
		return nil
	}
}

func (r *TripRecorder) save(ctx context.Context, event navigation.Event, pending startedTrip) error {
	var fraction float64
	if data, ok := event.Data.(navigation.StoppedData); ok && data.Progress != nil {
		fraction = data.Progress.FractionTraveled
	}

	t, err := tripDomain.NewTrip(event.SessionID, pending.summary, fraction, pending.startedAt, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to build trip: %w", err)
	}
	if err := r.repo.Save(ctx, t); err != nil {
		return err
	}

	r.logger.Info("trip recorded",
		zap.String("trip_id", t.ID().String()),
		zap.String("session_id", event.SessionID.String()),
		zap.Float64("distance_traveled", t.DistanceTraveled()),
	)
	return nil
}
