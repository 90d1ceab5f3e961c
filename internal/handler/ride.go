package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for posting a ride.
type CreateRideRequest struct {
	Role     string `json:"role" binding:"required,oneof=driver rider"`
	DateTime string `json:"dateTime" binding:"required"`
	From     string `json:"from" binding:"required"`
	To       string `json:"to" binding:"required"`
}

// UpdateRideRequest is the HTTP request body for updating a ride.
// Omitting driver or rider keeps the current party; an empty string clears it.
type UpdateRideRequest struct {
	DateTime string  `json:"dateTime" binding:"required"`
	From     string  `json:"from" binding:"required"`
	To       string  `json:"to" binding:"required"`
	Driver   *string `json:"driver"`
	Rider    *string `json:"rider"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	RideID   int64  `json:"rideId"`
	DateTime string `json:"dateTime"`
	Driver   string `json:"driver,omitempty"`
	Rider    string `json:"rider,omitempty"`
	From     string `json:"from"`
	To       string `json:"to"`
	Complete bool   `json:"complete"`
	State    string `json:"state"`
	Origin   string `json:"origin,omitempty"`
}

// RideListResponse is the HTTP response for ride listings.
type RideListResponse struct {
	Rides []RideResponse `json:"rides"`
	Count int            `json:"count"`
}

// BoardResponse is the HTTP response for the marketplace board.
type BoardResponse struct {
	Offers   []RideResponse `json:"offers"`
	Requests []RideResponse `json:"requests"`
	Accepted []RideResponse `json:"accepted"`
	Balance  int            `json:"balance"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		AsDriver: req.Role == "driver",
		DateTime: req.DateTime,
		From:     req.From,
		To:       req.To,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := parseRideID(c)
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ride == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ride not found"})
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// UpdateRide handles PUT /v1/rides/:id
func (h *RideHandler) UpdateRide(c *gin.Context) {
	rideID, ok := parseRideID(c)
	if !ok {
		return
	}

	var req UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.UpdateRide(c.Request.Context(), rideID, service.UpdateRideRequest{
		DateTime: req.DateTime,
		From:     req.From,
		To:       req.To,
		Driver:   req.Driver,
		Rider:    req.Rider,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// DeleteRide handles DELETE /v1/rides/:id
func (h *RideHandler) DeleteRide(c *gin.Context) {
	rideID, ok := parseRideID(c)
	if !ok {
		return
	}

	if err := h.rideService.DeleteRide(c.Request.Context(), rideID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"rideId": rideID, "deleted": true})
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	rideID, ok := parseRideID(c)
	if !ok {
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	rideID, ok := parseRideID(c)
	if !ok {
		return
	}

	ride, err := h.rideService.CompleteRide(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetOffers handles GET /v1/rides/offers
func (h *RideHandler) GetOffers(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	rides, err := h.rideService.GetAllRideOffers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideListResponse(rides))
}

// GetRequests handles GET /v1/rides/requests
func (h *RideHandler) GetRequests(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	rides, err := h.rideService.GetAllRideRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideListResponse(rides))
}

// GetAccepted handles GET /v1/rides/accepted
func (h *RideHandler) GetAccepted(c *gin.Context) {
	rides, err := h.rideService.GetAllAcceptedRides(c.Request.Context(), "")
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideListResponse(rides))
}

// GetMine handles GET /v1/rides/mine
func (h *RideHandler) GetMine(c *gin.Context) {
	rides, err := h.rideService.GetMyRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideListResponse(rides))
}

// GetBoard handles GET /v1/rides/board
func (h *RideHandler) GetBoard(c *gin.Context) {
	board, err := h.rideService.GetBoard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, BoardResponse{
		Offers:   toRideResponses(board.Offers),
		Requests: toRideResponses(board.Requests),
		Accepted: toRideResponses(board.Accepted),
		Balance:  board.Balance,
	})
}

func parseRideID(c *gin.Context) (int64, bool) {
	rideID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || rideID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: service.ErrInvalidRideID.Error()})
		return 0, false
	}
	return rideID, true
}

func parseListFilter(c *gin.Context) (service.ListFilter, bool) {
	scope, err := service.ParseScope(c.Query("scope"))
	if err != nil {
		respondError(c, err)
		return service.ListFilter{}, false
	}
	return service.ListFilter{Scope: scope}, true
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		RideID:   ride.RideID,
		DateTime: ride.DateTime,
		Driver:   ride.Driver,
		Rider:    ride.Rider,
		From:     ride.From,
		To:       ride.To,
		Complete: ride.Complete,
		State:    string(ride.State()),
		Origin:   string(ride.Origin),
	}
}

func toRideResponses(rides []*domain.Ride) []RideResponse {
	responses := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		responses = append(responses, toRideResponse(ride))
	}
	return responses
}

func toRideListResponse(rides []*domain.Ride) RideListResponse {
	return RideListResponse{Rides: toRideResponses(rides), Count: len(rides)}
}
