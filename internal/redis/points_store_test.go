package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

func TestPointsStore_DefaultBalanceDoesNotCreateRecord(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewPointsStore(client, 0)

	balance, err := store.Balance(context.Background(), "new.user@example.com")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != domain.StartingBalance {
		t.Errorf("expected %d, got %d", domain.StartingBalance, balance)
	}
	if mr.Exists(pointsKey("new.user@example.com")) {
		t.Error("reading a balance must not create a record")
	}
}

func TestPointsStore_AdjustUsesEncodedKey(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewPointsStore(client, 0)

	balance, applied, err := store.Adjust(context.Background(), "a.b@example.com", -50, "")
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if !applied || balance != 50 {
		t.Errorf("expected applied debit to 50, got %d (applied=%v)", balance, applied)
	}

	stored, err := mr.Get("userPoints:a%2Eb@example%2Ecom")
	if err != nil {
		t.Fatalf("expected balance under encoded key: %v", err)
	}
	if stored != "50" {
		t.Errorf("expected stored 50, got %q", stored)
	}
}

func TestPointsStore_InsufficientPointsWritesNothing(t *testing.T) {
	_, client := newTestClient(t)
	store := NewPointsStore(client, 0)
	ctx := context.Background()

	if _, _, err := store.Adjust(ctx, "u@x.com", -80, ""); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	_, applied, err := store.Adjust(ctx, "u@x.com", -50, "debit:1")
	if !errors.Is(err, repository.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if applied {
		t.Error("rejected debit must not be applied")
	}

	balance, _ := store.Balance(ctx, "u@x.com")
	if balance != 20 {
		t.Errorf("expected balance unchanged at 20, got %d", balance)
	}

	// The key was not consumed, so a later retry can still apply.
	if _, _, err := store.Adjust(ctx, "u@x.com", 100, ""); err != nil {
		t.Fatalf("Adjust credit: %v", err)
	}
	if _, applied, err := store.Adjust(ctx, "u@x.com", -50, "debit:1"); err != nil || !applied {
		t.Fatalf("expected retry to apply, got applied=%v err=%v", applied, err)
	}
}

func TestPointsStore_ExactBalanceDebitReachesZero(t *testing.T) {
	_, client := newTestClient(t)
	store := NewPointsStore(client, 0)

	balance, _, err := store.Adjust(context.Background(), "u@x.com", -100, "")
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected 0, got %d", balance)
	}
}

func TestPointsStore_IdempotencyKeyAppliesOnce(t *testing.T) {
	_, client := newTestClient(t)
	store := NewPointsStore(client, 0)
	ctx := context.Background()

	_, applied, err := store.Adjust(ctx, "d@x.com", 50, "reward:1")
	if err != nil || !applied {
		t.Fatalf("first adjust: applied=%v err=%v", applied, err)
	}

	balance, applied, err := store.Adjust(ctx, "d@x.com", 50, "reward:1")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if applied {
		t.Error("replay must not be applied")
	}
	if balance != 150 {
		t.Errorf("expected 150, got %d", balance)
	}

	// Keys are per user.
	if _, applied, _ := store.Adjust(ctx, "other@x.com", 50, "reward:1"); !applied {
		t.Error("same key for another user must apply")
	}
}

func TestPointsStore_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	_, client := newTestClient(t)
	store := NewPointsStore(client, 1000)
	ctx := context.Background()

	var (
		succeeded int32
		wg        sync.WaitGroup
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Adjust(ctx, "u@x.com", -domain.RequestCost, "")
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, repository.ErrInsufficientPoints):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 2 {
		t.Errorf("expected exactly 2 debits of 50 from 100, got %d", succeeded)
	}
	balance, _ := store.Balance(ctx, "u@x.com")
	if balance != 0 {
		t.Errorf("expected 0, got %d", balance)
	}
}
