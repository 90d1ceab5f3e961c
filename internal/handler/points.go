package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/service"
)

// PointsHandler handles HTTP requests for the points balance.
type PointsHandler struct {
	rideService *service.RideService
}

// NewPointsHandler creates a new PointsHandler.
func NewPointsHandler(rideService *service.RideService) *PointsHandler {
	return &PointsHandler{rideService: rideService}
}

// BalanceResponse is the HTTP response for a balance lookup.
type BalanceResponse struct {
	Balance int `json:"balance"`
}

// GetBalance handles GET /v1/points
func (h *PointsHandler) GetBalance(c *gin.Context) {
	balance, err := h.rideService.GetBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, BalanceResponse{Balance: balance})
}
