package repository

import (
	"context"

	"rideshare/internal/domain"
)

// PointsRepository defines the balance operations of the points ledger.
type PointsRepository interface {
	// Balance returns the stored balance, or the starting balance if none exists.
	Balance(ctx context.Context, userID string) (int, error)

	// Adjust atomically adds delta to the balance and returns the new balance.
	// A non-empty key makes the adjustment idempotent: replays report applied=false.
	Adjust(ctx context.Context, userID string, delta int, key string) (balance int, applied bool, err error)
}

// AdjustmentRepository defines the persistence operations for the adjustment journal.
type AdjustmentRepository interface {
	// Create persists a new journal row. Returns ErrDuplicate if the idempotency key exists.
	Create(ctx context.Context, adj *domain.PointsAdjustment) error

	// GetByIdempotencyKey retrieves a row by its idempotency key.
	// Returns nil if no row exists with the given key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.PointsAdjustment, error)

	// ListPending returns up to limit pending rows, oldest first.
	ListPending(ctx context.Context, limit int) ([]*domain.PointsAdjustment, error)

	// UpdateStatus records the outcome of an attempt to apply a row.
	UpdateStatus(ctx context.Context, id string, status domain.AdjustmentStatus, attempts int, lastError string) error
}
