package domain

import "time"

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideAccepted   NotificationType = "RIDE_ACCEPTED"
	NotificationRideCompleted  NotificationType = "RIDE_COMPLETED"
	NotificationRideCancelled  NotificationType = "RIDE_CANCELLED"
	NotificationPointsCredited NotificationType = "POINTS_CREDITED"
)

// Notification is a message for one user about a change to one of their rides.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipientId"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	RideID      int64            `json:"rideId,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}
