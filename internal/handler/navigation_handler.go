package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// EventStream serves the websocket event feed.
type EventStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// NavigationHandler exposes the dispatcher and the event stream over HTTP.
type NavigationHandler struct {
	dispatcher *RequestDispatcher
	events     EventStream
}

// NewNavigationHandler creates a new NavigationHandler. events may be nil.
func NewNavigationHandler(dispatcher *RequestDispatcher, events EventStream) *NavigationHandler {
	return &NavigationHandler{dispatcher: dispatcher, events: events}
}

// RegisterRoutes registers navigation routes. Handlers in mw run before every route.
func (h *NavigationHandler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	nav := r.Group("/api/v1/navigation")
	nav.Use(mw...)
	{
		nav.POST("/commands/:command", h.HandleCommand)
		nav.GET("/commands", h.ListCommands)
		if h.events != nil {
			nav.GET("/events", h.StreamEvents)
		}
	}
}

// HandleCommand handles POST /api/v1/navigation/commands/:command.
// The JSON body, if any, is the argument map.
func (h *NavigationHandler) HandleCommand(c *gin.Context) {
	args := map[string]any{}
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, "request body must be a JSON object")
		return
	}

	result := h.dispatcher.Handle(c.Request.Context(), c.Param("command"), args)
	c.JSON(StatusForResult(result), result)
}

// ListCommands handles GET /api/v1/navigation/commands.
func (h *NavigationHandler) ListCommands(c *gin.Context) {
	Success(c, h.dispatcher.Commands())
}

// StreamEvents handles GET /api/v1/navigation/events.
func (h *NavigationHandler) StreamEvents(c *gin.Context) {
	h.events.ServeWS(c.Writer, c.Request)
}
