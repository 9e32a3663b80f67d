package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
	"github.com/track-asia/service-navigation/internal/store"
)

const inboxSize = 64

var errSessionClosed = errors.New("navigation session closed")

// SessionStatus is a consistent view of the session at one point in time.
type SessionStatus struct {
	State    navigation.SessionState
	Route    *navigation.Route
	Progress *navigation.ProgressSnapshot
}

// SessionOption configures a NavigationSession.
type SessionOption func(*NavigationSession)

// WithClock overrides the time source used for progress and event timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *NavigationSession) { s.now = now }
}

// WithSessionID sets the id stamped on every emitted event.
func WithSessionID(id uuid.UUID) SessionOption {
	return func(s *NavigationSession) { s.id = id }
}

// NavigationSession drives the navigation lifecycle. All state lives on a single
// actor goroutine; callers talk to it through the inbox. Route fetches run on the
// caller's goroutine so the actor keeps answering queries while they are in flight.
type NavigationSession struct {
	id         uuid.UUID
	directions navigation.DirectionsClient
	store      *store.RouteStore
	emitter    navigation.EventEmitter
	logger     *zap.Logger
	now        func() time.Time

	inbox     chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the actor goroutine.
	state    navigation.SessionState
	sequence uint64
}

// NewNavigationSession creates a session in the idle state and starts its actor.
func NewNavigationSession(
	directions navigation.DirectionsClient,
	routeStore *store.RouteStore,
	emitter navigation.EventEmitter,
	logger *zap.Logger,
	opts ...SessionOption,
) *NavigationSession {
	s := &NavigationSession{
		id:         uuid.New(),
		directions: directions,
		store:      routeStore,
		emitter:    emitter,
		logger:     logger,
		now:        time.Now,
		inbox:      make(chan func(), inboxSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		state:      navigation.StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id.String()))
	go s.run()
	return s
}

// ID returns the session id.
func (s *NavigationSession) ID() uuid.UUID { return s.id }

// Close stops the actor. Operations issued afterwards fail with INTERNAL_ERROR.
func (s *NavigationSession) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

func (s *NavigationSession) run() {
	defer close(s.done)
	for {
		select {
		case msg := <-s.inbox:
			msg()
		case <-s.quit:
			return
		}
	}
}

// call runs fn on the actor and returns its result.
func call[T any](ctx context.Context, s *NavigationSession, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
		zero   T
	)
	reply := make(chan struct{})
	msg := func() {
		defer close(reply)
		result, err = fn()
	}

	select {
	case s.inbox <- msg:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.quit:
		return zero, navigation.NewInternalError(errSessionClosed)
	}

	// The actor never blocks, so once queued the message always completes.
	select {
	case <-reply:
		return result, err
	case <-s.quit:
		return zero, navigation.NewInternalError(errSessionClosed)
	}
}

// --- Commands ---

// CalculateRoute validates options, fetches a route and stores it. A route is
// committed in completion order, so the last fetch to finish wins. Recalculating
// while navigating replaces the route without leaving Navigating or Paused.
func (s *NavigationSession) CalculateRoute(ctx context.Context, options navigation.RouteOptions) (navigation.Route, error) {
	if err := options.Validate(); err != nil {
		s.logFailure("calculate route", err)
		return navigation.Route{}, err
	}

	route, err := s.directions.FetchRoute(ctx, options)
	if err != nil {
		s.logFailure("calculate route", err)
		return navigation.Route{}, err
	}

	_, err = call(ctx, s, func() (struct{}, error) {
		s.store.SetCurrentRoute(route)
		if s.state == navigation.StateIdle {
			s.transition(navigation.StateRouteReady)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return navigation.Route{}, err
	}

	s.logger.Info("route calculated",
		zap.Float64("distance", route.Distance()),
		zap.Float64("duration", route.Duration()),
		zap.Int("waypoints", len(route.Waypoints())),
	)
	return route, nil
}

// StartNavigation begins navigating the stored route from its origin.
func (s *NavigationSession) StartNavigation(ctx context.Context) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		route, ok := s.store.CurrentRoute()
		if !ok {
			return struct{}{}, navigation.NewNoRouteError()
		}

		progress := navigation.InitialProgress(route, s.now())
		s.store.SetProgress(progress)
		s.transition(navigation.StateNavigating)

		s.emit(navigation.EventStarted, navigation.SummarizeRoute(route))
		s.emitInstructions(route, progress)
		return struct{}{}, nil
	})
	if err != nil {
		s.logFailure("start navigation", err)
		return err
	}
	s.logger.Info("navigation started")
	return nil
}

// PauseNavigation freezes progress. Pausing a paused session does nothing.
func (s *NavigationSession) PauseNavigation(ctx context.Context) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		switch s.state {
		case navigation.StatePaused:
			return struct{}{}, nil
		case navigation.StateNavigating:
			s.transition(navigation.StatePaused)
			s.emit(navigation.EventPaused, nil)
			return struct{}{}, nil
		default:
			return struct{}{}, navigation.NewNotNavigatingError(s.state)
		}
	})
	if err != nil {
		s.logFailure("pause navigation", err)
	}
	return err
}

// ResumeNavigation unfreezes progress. Resuming a running session does nothing.
func (s *NavigationSession) ResumeNavigation(ctx context.Context) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		switch s.state {
		case navigation.StateNavigating:
			return struct{}{}, nil
		case navigation.StatePaused:
			s.transition(navigation.StateNavigating)
			s.emit(navigation.EventResumed, nil)
			return struct{}{}, nil
		default:
			return struct{}{}, navigation.NewNotNavigatingError(s.state)
		}
	})
	if err != nil {
		s.logFailure("resume navigation", err)
	}
	return err
}

// StopNavigation clears the route and progress and returns to idle. It succeeds
// from every state and always emits Stopped.
func (s *NavigationSession) StopNavigation(ctx context.Context) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		wasActive := s.state.IsActive()
		data := navigation.StoppedData{WasActive: wasActive}
		if p, ok := s.store.Progress(); ok {
			data.Progress = &p
		}

		s.store.Clear()
		s.transition(navigation.StateIdle)
		s.emit(navigation.EventStopped, data)
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("navigation stopped")
	return nil
}

// UpdateProgress recomputes progress after distanceTraveled meters along the route.
// While paused the frozen snapshot is returned unchanged.
func (s *NavigationSession) UpdateProgress(ctx context.Context, distanceTraveled float64) (navigation.ProgressSnapshot, error) {
	if math.IsNaN(distanceTraveled) || math.IsInf(distanceTraveled, 0) || distanceTraveled < 0 {
		err := navigation.NewInvalidArgumentsError("distanceTraveled must be a finite, non-negative number")
		s.logFailure("update progress", err)
		return navigation.ProgressSnapshot{}, err
	}

	snap, err := call(ctx, s, func() (navigation.ProgressSnapshot, error) {
		switch s.state {
		case navigation.StatePaused:
			p, _ := s.store.Progress()
			return p, nil
		case navigation.StateNavigating:
		default:
			return navigation.ProgressSnapshot{}, navigation.NewNotNavigatingError(s.state)
		}

		route, ok := s.store.CurrentRoute()
		if !ok {
			return navigation.ProgressSnapshot{}, navigation.NewNoRouteError()
		}
		previous, hadPrevious := s.store.Progress()

		next := navigation.ProgressAt(route, distanceTraveled, s.now())
		s.store.SetProgress(next)
		s.emit(navigation.EventProgressUpdated, next)
		if !hadPrevious || !previous.SameStep(next) {
			s.emitInstructions(route, next)
		}
		return next, nil
	})
	if err != nil {
		s.logFailure("update progress", err)
	}
	return snap, err
}

// --- Queries ---

// CurrentRoute returns the stored route, if any.
func (s *NavigationSession) CurrentRoute(ctx context.Context) (navigation.Route, bool, error) {
	status, err := s.Status(ctx)
	if err != nil || status.Route == nil {
		return navigation.Route{}, false, err
	}
	return *status.Route, true, nil
}

// Progress returns the current progress snapshot, if any.
func (s *NavigationSession) Progress(ctx context.Context) (navigation.ProgressSnapshot, bool, error) {
	status, err := s.Status(ctx)
	if err != nil || status.Progress == nil {
		return navigation.ProgressSnapshot{}, false, err
	}
	return *status.Progress, true, nil
}

// IsActive reports whether the session is navigating or paused.
func (s *NavigationSession) IsActive(ctx context.Context) (bool, error) {
	state, err := s.State(ctx)
	return state.IsActive(), err
}

// State returns the lifecycle state.
func (s *NavigationSession) State(ctx context.Context) (navigation.SessionState, error) {
	return call(ctx, s, func() (navigation.SessionState, error) {
		return s.state, nil
	})
}

// Status returns state, route and progress read together on the actor.
func (s *NavigationSession) Status(ctx context.Context) (SessionStatus, error) {
	return call(ctx, s, func() (SessionStatus, error) {
		snap := s.store.Snapshot()
		return SessionStatus{State: s.state, Route: snap.Route, Progress: snap.Progress}, nil
	})
}

// --- Actor helpers ---

func (s *NavigationSession) transition(target navigation.SessionState) {
	if !s.state.CanTransitionTo(target) {
		// The commands above only request allowed transitions.
		s.logger.Error("invalid session transition",
			zap.String("from", s.state.String()),
			zap.String("to", target.String()),
		)
		return
	}
	if s.state != target {
		s.logger.Debug("session state changed",
			zap.String("from", s.state.String()),
			zap.String("to", target.String()),
		)
	}
	s.state = target
}

func (s *NavigationSession) emit(eventType navigation.EventType, data any) {
	s.sequence++
	s.emitter.Emit(navigation.Event{
		Type:      eventType,
		SessionID: s.id,
		Sequence:  s.sequence,
		Timestamp: s.now(),
		Data:      data,
	})
}

// emitInstructions announces the step the progress points at.
func (s *NavigationSession) emitInstructions(route navigation.Route, progress navigation.ProgressSnapshot) {
	step, ok := route.Step(progress.CurrentLegIndex, progress.CurrentStepIndex)
	if !ok {
		return
	}

	banner := step.BannerInstruction
	if banner == "" {
		banner = step.Instruction
	}
	voice := step.VoiceInstruction
	if voice == "" {
		voice = step.Instruction
	}

	if banner != "" {
		s.emit(navigation.EventBannerInstruction, navigation.InstructionData{
			Text:      banner,
			LegIndex:  progress.CurrentLegIndex,
			StepIndex: progress.CurrentStepIndex,
		})
	}
	if voice != "" {
		s.emit(navigation.EventVoiceInstruction, navigation.InstructionData{
			Text:      voice,
			LegIndex:  progress.CurrentLegIndex,
			StepIndex: progress.CurrentStepIndex,
		})
	}
}

func (s *NavigationSession) logFailure(op string, err error) {
	navErr := navigation.AsError(err)
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("code", navErr.Code),
		zap.String("category", string(navErr.Category)),
		zap.Error(err),
	}
	switch navErr.Category {
	case navigation.CategoryTransport, navigation.CategoryService, navigation.CategoryInternal:
		s.logger.Warn("navigation operation failed", fields...)
	default:
		s.logger.Debug("navigation operation rejected", fields...)
	}
}
