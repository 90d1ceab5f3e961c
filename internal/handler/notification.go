package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// NotificationHandler handles HTTP requests for ride notifications.
type NotificationHandler struct {
	rideService *service.RideService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(rideService *service.RideService) *NotificationHandler {
	return &NotificationHandler{rideService: rideService}
}

// NotificationResponse is the HTTP response for one notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RideID    int64     `json:"rideId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationListResponse is the HTTP response for a notification listing.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Count         int                    `json:"count"`
}

// GetNotifications handles GET /v1/notifications?limit=
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	notifications, err := h.rideService.GetNotifications(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toNotificationListResponse(notifications))
}

func toNotificationListResponse(notifications []*domain.Notification) NotificationListResponse {
	items := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			RideID:    n.RideID,
			CreatedAt: n.CreatedAt,
		})
	}
	return NotificationListResponse{Notifications: items, Count: len(items)}
}
