package handler

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

// Navigator is the session surface the dispatcher drives.
type Navigator interface {
	CalculateRoute(ctx context.Context, options navigation.RouteOptions) (navigation.Route, error)
	StartNavigation(ctx context.Context) error
	StopNavigation(ctx context.Context) error
	PauseNavigation(ctx context.Context) error
	ResumeNavigation(ctx context.Context) error
	UpdateProgress(ctx context.Context, distanceTraveled float64) (navigation.ProgressSnapshot, error)
	CurrentRoute(ctx context.Context) (navigation.Route, bool, error)
	Progress(ctx context.Context) (navigation.ProgressSnapshot, bool, error)
	IsActive(ctx context.Context) (bool, error)
	State(ctx context.Context) (navigation.SessionState, error)
}

// ResultStatus is the outcome of a dispatched command.
type ResultStatus string

const (
	StatusSuccess        ResultStatus = "success"
	StatusError          ResultStatus = "error"
	StatusNotImplemented ResultStatus = "not_implemented"
)

// Result is the response to every dispatched command.
type Result struct {
	Status ResultStatus `json:"status"`
	Data   any          `json:"data"`
	Error  *ResultError `json:"error,omitempty"`
}

// ResultError is the structured failure carried by an error Result.
type ResultError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Category   string `json:"category"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// Canonical command names.
const (
	CommandCalculateRoute   = "calculateRoute"
	CommandStartNavigation  = "startNavigation"
	CommandStopNavigation   = "stopNavigation"
	CommandPauseNavigation  = "pauseNavigation"
	CommandResumeNavigation = "resumeNavigation"
	CommandGetCurrentRoute  = "getCurrentRoute"
	CommandIsActive         = "isActive"
	CommandGetProgress      = "getProgress"
	CommandUpdateProgress   = "updateProgress"
	CommandGetState         = "getState"
)

// commandAliases maps names used by older host bridges onto canonical commands.
var commandAliases = map[string]string{
	"navigation#calculateRoute":  CommandCalculateRoute,
	"navigation#start":           CommandStartNavigation,
	"navigation#stop":            CommandStopNavigation,
	"navigation#pause":           CommandPauseNavigation,
	"navigation#resume":          CommandResumeNavigation,
	"navigation#getCurrentRoute": CommandGetCurrentRoute,
	"navigation#isActive":        CommandIsActive,
	"isNavigationActive":         CommandIsActive,
	"navigation#getProgress":     CommandGetProgress,
	"navigation#updateProgress":  CommandUpdateProgress,
	"navigation#getState":        CommandGetState,
}

type commandFunc func(ctx context.Context, args map[string]any) (any, error)

// RequestDispatcher maps named commands with loosely typed arguments onto the
// navigation session and turns every outcome into a Result.
type RequestDispatcher struct {
	session  Navigator
	logger   *zap.Logger
	commands map[string]commandFunc
}

// NewRequestDispatcher creates a RequestDispatcher for session.
func NewRequestDispatcher(session Navigator, logger *zap.Logger) *RequestDispatcher {
	d := &RequestDispatcher{session: session, logger: logger}
	d.commands = map[string]commandFunc{
		CommandCalculateRoute:   d.calculateRoute,
		CommandStartNavigation:  d.startNavigation,
		CommandStopNavigation:   d.stopNavigation,
		CommandPauseNavigation:  d.pauseNavigation,
		CommandResumeNavigation: d.resumeNavigation,
		CommandGetCurrentRoute:  d.getCurrentRoute,
		CommandIsActive:         d.isActive,
		CommandGetProgress:      d.getProgress,
		CommandUpdateProgress:   d.updateProgress,
		CommandGetState:         d.getState,
	}
	return d
}

// Commands returns the canonical command names.
func (d *RequestDispatcher) Commands() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	return names
}

// Handle executes command. It never panics and never returns a bare error:
// unknown commands yield StatusNotImplemented and failures a ResultError.
func (d *RequestDispatcher) Handle(ctx context.Context, command string, args map[string]any) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command panicked",
				zap.String("command", command),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			result = errorResult(navigation.NewInternalError(fmt.Errorf("panic: %v", r)))
		}
	}()

	name := command
	if canonical, ok := commandAliases[command]; ok {
		name = canonical
	}
	fn, ok := d.commands[name]
	if !ok {
		d.logger.Debug("command not implemented", zap.String("command", command))
		return Result{Status: StatusNotImplemented}
	}

	if args == nil {
		args = map[string]any{}
	}
	data, err := fn(ctx, args)
	if err != nil {
		return errorResult(err)
	}
	return Result{Status: StatusSuccess, Data: data}
}

func errorResult(err error) Result {
	navErr := navigation.AsError(err)
	return Result{
		Status: StatusError,
		Error: &ResultError{
			Code:       navErr.Code,
			Message:    navErr.Message,
			Category:   string(navErr.Category),
			StatusCode: navErr.StatusCode,
		},
	}
}

// --- Commands ---

func (d *RequestDispatcher) calculateRoute(ctx context.Context, args map[string]any) (any, error) {
	coords, err := parseWaypoints(args)
	if err != nil {
		return nil, err
	}
	profile, err := navigation.ParseProfile(profileArg(args))
	if err != nil {
		return nil, err
	}

	route, err := d.session.CalculateRoute(ctx, navigation.NewRouteOptions(coords, profile))
	if err != nil {
		return nil, err
	}
	return routeDict(route), nil
}

func (d *RequestDispatcher) startNavigation(ctx context.Context, _ map[string]any) (any, error) {
	if err := d.session.StartNavigation(ctx); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *RequestDispatcher) stopNavigation(ctx context.Context, _ map[string]any) (any, error) {
	if err := d.session.StopNavigation(ctx); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *RequestDispatcher) pauseNavigation(ctx context.Context, _ map[string]any) (any, error) {
	if err := d.session.PauseNavigation(ctx); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *RequestDispatcher) resumeNavigation(ctx context.Context, _ map[string]any) (any, error) {
	if err := d.session.ResumeNavigation(ctx); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *RequestDispatcher) getCurrentRoute(ctx context.Context, _ map[string]any) (any, error) {
	route, ok, err := d.session.CurrentRoute(ctx)
	if err != nil || !ok {
		return nil, err
	}
	dict := routeDict(route)
	if legs := route.Legs(); len(legs) > 0 {
		dict["legs"] = legs
	}
	return dict, nil
}

func (d *RequestDispatcher) isActive(ctx context.Context, _ map[string]any) (any, error) {
	return d.session.IsActive(ctx)
}

func (d *RequestDispatcher) getProgress(ctx context.Context, _ map[string]any) (any, error) {
	progress, ok, err := d.session.Progress(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return progress, nil
}

func (d *RequestDispatcher) updateProgress(ctx context.Context, args map[string]any) (any, error) {
	raw, ok := args["distanceTraveled"]
	if !ok {
		return nil, navigation.NewInvalidArgumentsError("distanceTraveled is required")
	}
	distance, ok := toFloat(raw)
	if !ok {
		return nil, navigation.NewInvalidArgumentsError("distanceTraveled must be a number")
	}
	return d.session.UpdateProgress(ctx, distance)
}

func (d *RequestDispatcher) getState(ctx context.Context, _ map[string]any) (any, error) {
	state, err := d.session.State(ctx)
	if err != nil {
		return nil, err
	}
	return state.String(), nil
}

func routeDict(r navigation.Route) map[string]any {
	wps := r.Waypoints()
	pairs := make([][]float64, len(wps))
	for i, w := range wps {
		pairs[i] = w.Pair()
	}
	return map[string]any{
		"geometry":  r.Geometry(),
		"distance":  r.Distance(),
		"duration":  r.Duration(),
		"waypoints": pairs,
	}
}
