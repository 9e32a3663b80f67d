package navigation

import (
	"errors"
	"fmt"
)

// ErrorCategory groups failures by how a caller is expected to react to them.
type ErrorCategory string

const (
	CategoryInput     ErrorCategory = "input"
	CategoryTransport ErrorCategory = "transport"
	CategoryService   ErrorCategory = "service"
	CategoryState     ErrorCategory = "state"
	CategoryInternal  ErrorCategory = "internal"
)

// Error codes surfaced across the host boundary.
const (
	CodeInvalidWaypoints  = "INVALID_WAYPOINTS"
	CodeInvalidCoordinate = "INVALID_COORDINATE"
	CodeInvalidProfile    = "INVALID_PROFILE"
	CodeInvalidArguments  = "INVALID_ARGUMENTS"
	CodeNetwork           = "NETWORK_ERROR"
	CodeService           = "SERVICE_ERROR"
	CodeEmptyResponse     = "EMPTY_RESPONSE"
	CodeParse             = "PARSE_ERROR"
	CodeNoRouteFound      = "NO_ROUTE_FOUND"
	CodeNoRoute           = "NO_ROUTE"
	CodeNotNavigating     = "NOT_NAVIGATING"
	CodeInternal          = "INTERNAL_ERROR"
)

// Error is the single error type produced by the navigation core.
type Error struct {
	Category ErrorCategory
	Code     string
	Message  string
	// StatusCode is the directions service HTTP status for SERVICE_ERROR, zero otherwise.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidWaypoints  = &Error{Category: CategoryInput, Code: CodeInvalidWaypoints}
	ErrInvalidCoordinate = &Error{Category: CategoryInput, Code: CodeInvalidCoordinate}
	ErrInvalidProfile    = &Error{Category: CategoryInput, Code: CodeInvalidProfile}
	ErrInvalidArguments  = &Error{Category: CategoryInput, Code: CodeInvalidArguments}
	ErrNetwork           = &Error{Category: CategoryTransport, Code: CodeNetwork}
	ErrService           = &Error{Category: CategoryService, Code: CodeService}
	ErrEmptyResponse     = &Error{Category: CategoryService, Code: CodeEmptyResponse}
	ErrParse             = &Error{Category: CategoryService, Code: CodeParse}
	ErrNoRouteFound      = &Error{Category: CategoryService, Code: CodeNoRouteFound}
	ErrNoRoute           = &Error{Category: CategoryState, Code: CodeNoRoute}
	ErrNotNavigating     = &Error{Category: CategoryState, Code: CodeNotNavigating}
	ErrInternal          = &Error{Category: CategoryInternal, Code: CodeInternal}
)

// NewInvalidWaypointsError reports a waypoint list the directions service cannot route.
func NewInvalidWaypointsError(message string) *Error {
	return &Error{Category: CategoryInput, Code: CodeInvalidWaypoints, Message: message}
}

// NewInvalidCoordinateError reports a non-finite or out-of-range coordinate.
func NewInvalidCoordinateError(message string) *Error {
	return &Error{Category: CategoryInput, Code: CodeInvalidCoordinate, Message: message}
}

// NewInvalidProfileError reports an unknown travel profile.
func NewInvalidProfileError(profile string) *Error {
	return &Error{
		Category: CategoryInput,
		Code:     CodeInvalidProfile,
		Message:  fmt.Sprintf("unknown travel profile %q", profile),
	}
}

// NewInvalidArgumentsError reports a missing or malformed command argument.
func NewInvalidArgumentsError(message string) *Error {
	return &Error{Category: CategoryInput, Code: CodeInvalidArguments, Message: message}
}

// NewNetworkError wraps a transport failure or timeout.
func NewNetworkError(err error) *Error {
	return &Error{Category: CategoryTransport, Code: CodeNetwork, Message: "route request failed", Err: err}
}

// NewServiceError reports a non-success HTTP status from the directions service.
func NewServiceError(statusCode int, detail string) *Error {
	msg := fmt.Sprintf("route calculation failed with code: %d", statusCode)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return &Error{Category: CategoryService, Code: CodeService, Message: msg, StatusCode: statusCode}
}

// NewEmptyResponseError reports a success status with no body.
func NewEmptyResponseError() *Error {
	return &Error{Category: CategoryService, Code: CodeEmptyResponse, Message: "empty response body"}
}

// NewParseError wraps a body that could not be decoded into a route response.
func NewParseError(err error) *Error {
	return &Error{Category: CategoryService, Code: CodeParse, Message: "error parsing route response", Err: err}
}

// NewNoRouteFoundError reports a decoded response carrying zero routes.
func NewNoRouteFoundError(detail string) *Error {
	msg := "no route found"
	if detail != "" {
		msg += ": " + detail
	}
	return &Error{Category: CategoryService, Code: CodeNoRouteFound, Message: msg}
}

// NewNoRouteError reports an operation that needs a calculated route.
func NewNoRouteError() *Error {
	return &Error{
		Category: CategoryState,
		Code:     CodeNoRoute,
		Message:  "No route available. Please calculate a route first.",
	}
}

// NewNotNavigatingError reports an operation that needs an active navigation.
func NewNotNavigatingError(state SessionState) *Error {
	return &Error{
		Category: CategoryState,
		Code:     CodeNotNavigating,
		Message:  fmt.Sprintf("navigation is not active (state: %s)", state),
	}
}

// NewInternalError wraps an unexpected fault.
func NewInternalError(err error) *Error {
	return &Error{Category: CategoryInternal, Code: CodeInternal, Message: "internal error", Err: err}
}

// AsError converts any error into an *Error, classifying unknown errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var navErr *Error
	if errors.As(err, &navErr) {
		return navErr
	}
	return NewInternalError(err)
}
