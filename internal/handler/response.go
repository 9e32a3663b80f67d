package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
	tripDomain "github.com/track-asia/service-navigation/internal/domain/trip"
)

// apiResponse is the envelope for non-command endpoints.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    any             `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Meta    *paginationMeta `json:"meta,omitempty"`
}

type paginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, data any, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    data,
		Meta:    &paginationMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, apiResponse{Success: false, Error: message})
}

// Error maps err to an HTTP status and writes it.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var navErr *navigation.Error
	switch {
	case errors.Is(err, tripDomain.ErrTripNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.As(err, &navErr):
		status, message = statusForError(navErr), navErr.Message
	}

	_ = c.Error(err)
	c.JSON(status, apiResponse{Success: false, Error: message})
}

// StatusForResult returns the HTTP status for a dispatched command result.
func StatusForResult(r Result) int {
	switch r.Status {
	case StatusSuccess:
		return http.StatusOK
	case StatusNotImplemented:
		return http.StatusNotImplemented
	}
	if r.Error == nil {
		return http.StatusInternalServerError
	}
	return statusForError(&navigation.Error{
		Category: navigation.ErrorCategory(r.Error.Category),
		Code:     r.Error.Code,
	})
}

func statusForError(e *navigation.Error) int {
	if e.Code == navigation.CodeNoRouteFound {
		return http.StatusUnprocessableEntity
	}
	switch e.Category {
	case navigation.CategoryInput:
		return http.StatusBadRequest
	case navigation.CategoryState:
		return http.StatusConflict
	case navigation.CategoryTransport:
		return http.StatusBadGateway
	case navigation.CategoryService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
