package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal errors are logged and reported without detail.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	_ = c.Error(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		message = "internal error"
	}
	c.JSON(code, ErrorResponse{Error: message})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidRideInput),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidAdjustment),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidScope),
		errors.Is(err, repository.ErrInvalidRide),
		errors.Is(err, repository.ErrInvalidField):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Conflict errors
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, repository.ErrInsufficientPoints):
		return http.StatusPaymentRequired

	// Storage unavailable or contended
	case errors.Is(err, repository.ErrStorageTransaction),
		errors.Is(err, repository.ErrStorageWrite),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
