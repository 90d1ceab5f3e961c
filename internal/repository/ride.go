package repository

import (
	"context"

	"rideshare/internal/domain"
)

// IndexHint selects the coarse server-side candidate set for a ride query.
type IndexHint string

const (
	IndexAll          IndexHint = "all"
	IndexRiderAbsent  IndexHint = "rider_absent"
	IndexDriverAbsent IndexHint = "driver_absent"
)

// RideMutation computes the next state of a ride from its current state.
// Returning a nil ride leaves the record untouched. Returning an error aborts the
// transaction and the error is handed back to the caller unchanged.
// The function may run more than once when concurrent writers conflict.
type RideMutation func(current *domain.Ride) (*domain.Ride, error)

// RideCheck validates a ride before it is removed.
type RideCheck func(current *domain.Ride) error

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// AllocateID atomically increments the shared ride counter and returns the new value.
	AllocateID(ctx context.Context) (int64, error)

	// Save overwrites the full record stored under id.
	Save(ctx context.Context, id int64, ride *domain.Ride) error

	// Get retrieves a ride by ID. Returns nil if no ride exists.
	Get(ctx context.Context, id int64) (*domain.Ride, error)

	// UpdateFields writes only the named fields of an existing ride.
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error

	// Delete removes a ride. Deleting a missing ride succeeds.
	Delete(ctx context.Context, id int64) error

	// Query fetches the candidates selected by hint and keeps those matching pred.
	Query(ctx context.Context, hint IndexHint, pred func(*domain.Ride) bool) ([]*domain.Ride, error)

	// Mutate runs fn against the current ride inside a conditional transaction and
	// returns the committed ride. Returns ErrNotFound if the ride does not exist.
	Mutate(ctx context.Context, id int64, fn RideMutation) (*domain.Ride, error)

	// Remove deletes the ride inside a conditional transaction and returns the removed
	// record. Returns nil if the ride did not exist.
	Remove(ctx context.Context, id int64, check RideCheck) (*domain.Ride, error)
}
