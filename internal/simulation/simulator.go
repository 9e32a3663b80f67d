package simulation

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/track-asia/service-navigation/internal/application"
	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

// Session is the part of the navigation session the simulator drives.
type Session interface {
	Status(ctx context.Context) (application.SessionStatus, error)
	UpdateProgress(ctx context.Context, distanceTraveled float64) (navigation.ProgressSnapshot, error)
}

// Simulator moves a navigating session along its route at a constant speed.
type Simulator struct {
	session  Session
	interval time.Duration
	speed    float64 // metres per second
	logger   *zap.Logger
}

// NewSimulator creates a Simulator that advances speed*interval metres per tick.
func NewSimulator(session Session, interval time.Duration, speed float64, logger *zap.Logger) *Simulator {
	return &Simulator{session: session, interval: interval, speed: speed, logger: logger}
}

// Run ticks until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("route simulator started",
		zap.Duration("interval", s.interval),
		zap.Float64("speed_mps", s.speed),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("route simulator stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("simulation tick failed", zap.Error(err))
			}
		}
	}
}

// Tick advances the session by one step. It reports whether progress was pushed.
// Sessions that are not navigating, or have already arrived, are left alone.
func (s *Simulator) Tick(ctx context.Context) (bool, error) {
	status, err := s.session.Status(ctx)
	if err != nil {
		return false, err
	}
	if status.State != navigation.StateNavigating || status.Route == nil || status.Progress == nil {
		return false, nil
	}
	if status.Progress.FractionTraveled >= 1 {
		return false, nil
	}

	// A fresh start reports the full distance remaining, so the odometer restarts at zero.
	traveled := math.Max(0, status.Route.Distance()-status.Progress.DistanceRemaining)
	traveled += s.speed * s.interval.Seconds()

	if _, err := s.session.UpdateProgress(ctx, traveled); err != nil {
		// Paused or stopped between the status read and the update.
		if errors.Is(err, navigation.ErrNotNavigating) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
