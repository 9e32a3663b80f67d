package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/track-asia/service-navigation/internal/application"
)

// TripHandler handles HTTP requests for recorded trips.
type TripHandler struct {
	service *application.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(service *application.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// RegisterRoutes registers trip routes.
func (h *TripHandler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	trips := r.Group("/api/v1/navigation/trips")
	trips.Use(mw...)
	{
		trips.GET("", h.ListTrips)
		trips.GET("/:id", h.GetTrip)
	}
}

// ListTrips handles GET /api/v1/navigation/trips.
func (h *TripHandler) ListTrips(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	trips, total, err := h.service.ListTrips(c.Request.Context(), page, limit)
	if err != nil {
		Error(c, err)
		return
	}

	Paginated(c, trips, total, page, limit)
}

// GetTrip handles GET /api/v1/navigation/trips/:id.
func (h *TripHandler) GetTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid trip ID")
		return
	}

	trip, err := h.service.GetTrip(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, trip)
}
