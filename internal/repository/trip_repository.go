package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
	tripDomain "github.com/track-asia/service-navigation/internal/domain/trip"
)

// TripModel is the GORM model for the navigation_trips table.
type TripModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Waypoints        json.RawMessage `gorm:"type:jsonb;not null"`
	DistanceMeters   float64         `gorm:"not null"`
	DurationSeconds  float64         `gorm:"not null"`
	FractionTraveled float64         `gorm:"not null"`
	StartedAt        time.Time       `gorm:"not null"`
	EndedAt          time.Time       `gorm:"not null;index"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName sets the table name.
func (TripModel) TableName() string { return "navigation_trips" }

// GormTripRepository implements TripRepository using GORM.
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GormTripRepository.
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// Save persists a new trip.
func (r *GormTripRepository) Save(ctx context.Context, t *tripDomain.Trip) error {
	model, err := toTripModel(t)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

// FindByID returns a single trip by ID.
func (r *GormTripRepository) FindByID(ctx context.Context, id uuid.UUID) (*tripDomain.Trip, error) {
	var model TripModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tripDomain.ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}
	return toTripDomain(&model)
}

// ListRecent returns trips newest first with pagination.
func (r *GormTripRepository) ListRecent(ctx context.Context, page, limit int) ([]*tripDomain.Trip, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TripModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	var models []TripModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("ended_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	trips := make([]*tripDomain.Trip, len(models))
	for i := range models {
		t, err := toTripDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		trips[i] = t
	}
	return trips, total, nil
}

func toTripModel(t *tripDomain.Trip) (TripModel, error) {
	waypoints, err := json.Marshal(t.Waypoints())
	if err != nil {
		return TripModel{}, fmt.Errorf("failed to marshal trip waypoints: %w", err)
	}
	return TripModel{
		ID:               t.ID(),
		SessionID:        t.SessionID(),
		Waypoints:        waypoints,
		DistanceMeters:   t.Distance(),
		DurationSeconds:  t.Duration(),
		FractionTraveled: t.FractionTraveled(),
		StartedAt:        t.StartedAt(),
		EndedAt:          t.EndedAt(),
		CreatedAt:        t.CreatedAt(),
	}, nil
}

func toTripDomain(m *TripModel) (*tripDomain.Trip, error) {
	var waypoints []navigation.Coordinate
	if err := json.Unmarshal(m.Waypoints, &waypoints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip waypoints: %w", err)
	}
	return tripDomain.Reconstruct(
		m.ID,
		m.SessionID,
		waypoints,
		m.DistanceMeters,
		m.DurationSeconds,
		m.FractionTraveled,
		m.StartedAt,
		m.EndedAt,
		m.CreatedAt,
	), nil
}
