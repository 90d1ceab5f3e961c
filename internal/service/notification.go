package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
)

// NotificationStore delivers notifications and keeps the recent ones per user.
type NotificationStore interface {
	Publish(ctx context.Context, n *domain.Notification) error
	Recent(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}

// NotificationService tells the other party of a ride what happened to it.
// A nil *NotificationService is valid and sends nothing.
type NotificationService struct {
	store NotificationStore
}

// NewNotificationService creates a new NotificationService. With a nil store
// notifications are only logged.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// NotifyRideAccepted notifies the creator of a ride that someone took the open seat.
func (s *NotificationService) NotifyRideAccepted(ctx context.Context, ride *domain.Ride, acceptedBy string) {
	recipient := counterpart(ride, acceptedBy)
	role := "rider"
	if ride.Driver == acceptedBy {
		role = "driver"
	}
	s.send(ctx, domain.Notification{
		Type:        domain.NotificationRideAccepted,
		RecipientID: recipient,
		Title:       "Ride accepted",
		Message:     fmt.Sprintf("%s joined your ride from %s to %s as %s", acceptedBy, ride.From, ride.To, role),
		RideID:      ride.RideID,
	})
}

// NotifyRideCompleted notifies the other party that the ride was marked complete.
func (s *NotificationService) NotifyRideCompleted(ctx context.Context, ride *domain.Ride, completedBy string) {
	s.send(ctx, domain.Notification{
		Type:        domain.NotificationRideCompleted,
		RecipientID: counterpart(ride, completedBy),
		Title:       "Ride completed",
		Message:     fmt.Sprintf("Your ride from %s to %s on %s is complete", ride.From, ride.To, ride.DateTime),
		RideID:      ride.RideID,
	})
}

// NotifyRideCancelled notifies the other party that the ride was deleted.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, ride *domain.Ride, cancelledBy string) {
	s.send(ctx, domain.Notification{
		Type:        domain.NotificationRideCancelled,
		RecipientID: counterpart(ride, cancelledBy),
		Title:       "Ride cancelled",
		Message:     fmt.Sprintf("%s cancelled the ride from %s to %s", cancelledBy, ride.From, ride.To),
		RideID:      ride.RideID,
	})
}

// NotifyPointsCredited notifies a user that points were added to their balance.
func (s *NotificationService) NotifyPointsCredited(ctx context.Context, userID string, amount int, reason domain.AdjustmentReason, rideID int64) {
	s.send(ctx, domain.Notification{
		Type:        domain.NotificationPointsCredited,
		RecipientID: userID,
		Title:       "Points credited",
		Message:     fmt.Sprintf("%d points credited (%s)", amount, reason),
		RideID:      rideID,
	})
}

// Recent returns the latest notifications of userID, newest first.
func (s *NotificationService) Recent(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if s == nil || s.store == nil {
		return []*domain.Notification{}, nil
	}
	return s.store.Recent(ctx, userID, limit)
}

// send delivers a notification. Delivery failures are logged and never fail the
// ride operation that caused them.
func (s *NotificationService) send(ctx context.Context, n domain.Notification) {
	if s == nil || n.RecipientID == "" {
		return
	}

	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Ride=%d, Message=%s",
		n.Type, n.RecipientID, n.RideID, n.Message)

	if s.store == nil {
		return
	}
	if err := s.store.Publish(context.WithoutCancel(ctx), &n); err != nil {
		log.Printf("notification %s for %s not delivered: %v", n.Type, n.RecipientID, err)
	}
}

// counterpart returns the party of ride that is not user, or "" if there is none.
func counterpart(ride *domain.Ride, user string) string {
	switch user {
	case ride.Driver:
		return ride.Rider
	case ride.Rider:
		return ride.Driver
	default:
		return ""
	}
}
