package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"rideshare/internal/domain"
)

// DefaultNotificationHistory is how many notifications are kept per user.
const DefaultNotificationHistory = 50

// NotificationStore keeps recent notifications in a capped list per user.
type NotificationStore struct {
	client  *redis.Client
	history int
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(client *redis.Client, history int) *NotificationStore {
	if history <= 0 {
		history = DefaultNotificationHistory
	}
	return &NotificationStore{client: client, history: history}
}

// Publish appends n to the recipient's history, dropping the oldest entries.
func (s *NotificationStore) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	key := notificationsKey(n.RecipientID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, int64(s.history-1))
		return nil
	})
	return err
}

// Recent returns up to limit notifications of userID, newest first.
func (s *NotificationStore) Recent(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > s.history {
		limit = s.history
	}

	items, err := s.client.LRange(ctx, notificationsKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Notification, 0, len(items))
	for _, item := range items {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			log.Printf("notifications for %s: skipping undecodable entry: %v", userID, err)
			continue
		}
		result = append(result, &n)
	}
	return result, nil
}
