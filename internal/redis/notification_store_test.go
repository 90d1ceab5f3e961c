package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rideshare/internal/domain"
)

func TestNotificationStore_PublishAndRecent(t *testing.T) {
	_, client := newTestClient(t)
	store := NewNotificationStore(client, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		err := store.Publish(ctx, &domain.Notification{
			ID:          fmt.Sprintf("n%d", i),
			Type:        domain.NotificationRideAccepted,
			RecipientID: "alice@example.com",
			RideID:      int64(i),
			CreatedAt:   time.Now(),
		})
		if err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	got, err := store.Recent(ctx, "alice@example.com", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(got))
	}
	if got[0].ID != "n5" || got[2].ID != "n3" {
		t.Errorf("expected newest first, got %s..%s", got[0].ID, got[2].ID)
	}

	got, _ = store.Recent(ctx, "alice@example.com", 1)
	if len(got) != 1 || got[0].RideID != 5 {
		t.Errorf("expected only the newest, got %+v", got)
	}

	got, _ = store.Recent(ctx, "bob@example.com", 10)
	if len(got) != 0 {
		t.Errorf("expected none for bob, got %d", len(got))
	}
}

func TestNotificationStore_SkipsUndecodable(t *testing.T) {
	_, client := newTestClient(t)
	store := NewNotificationStore(client, 0)
	ctx := context.Background()

	client.LPush(ctx, notificationsKey("alice@example.com"), "not json")
	_ = store.Publish(ctx, &domain.Notification{ID: "n1", RecipientID: "alice@example.com"})

	got, err := store.Recent(ctx, "alice@example.com", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("expected only the valid entry, got %+v", got)
	}
}
