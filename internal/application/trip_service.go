package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
	tripDomain "github.com/track-asia/service-navigation/internal/domain/trip"
)

// TripDTO is the API response representation of a recorded trip.
type TripDTO struct {
	ID               uuid.UUID               `json:"id"`
	SessionID        uuid.UUID               `json:"session_id"`
	Waypoints        []navigation.Coordinate `json:"waypoints"`
	Distance         float64                 `json:"distance"`
	Duration         float64                 `json:"duration"`
	FractionTraveled float64                 `json:"fraction_traveled"`
	DistanceTraveled float64                 `json:"distance_traveled"`
	StartedAt        time.Time               `json:"started_at"`
	EndedAt          time.Time               `json:"ended_at"`
	CreatedAt        time.Time               `json:"created_at"`
}

// TripService handles trip history use cases.
type TripService struct {
	repo   tripDomain.TripRepository
	logger *zap.Logger
}

// NewTripService creates a new TripService.
func NewTripService(repo tripDomain.TripRepository, logger *zap.Logger) *TripService {
	return &TripService{repo: repo, logger: logger}
}

// ListTrips returns recorded trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, page, limit int) ([]TripDTO, int64, error) {
	trips, total, err := s.repo.ListRecent(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = toTripDTO(t)
	}
	return dtos, total, nil
}

// GetTrip returns a single trip.
func (s *TripService) GetTrip(ctx context.Context, id uuid.UUID) (*TripDTO, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toTripDTO(t)
	return &dto, nil
}

func toTripDTO(t *tripDomain.Trip) TripDTO {
	return TripDTO{
		ID:               t.ID(),
		SessionID:        t.SessionID(),
		Waypoints:        t.Waypoints(),
		Distance:         t.Distance(),
		Duration:         t.Duration(),
		FractionTraveled: t.FractionTraveled(),
		DistanceTraveled: t.DistanceTraveled(),
		StartedAt:        t.StartedAt(),
		EndedAt:          t.EndedAt(),
		CreatedAt:        t.CreatedAt(),
	}
}
