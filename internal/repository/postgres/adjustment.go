package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// AdjustmentRepository is a PostgreSQL implementation of repository.AdjustmentRepository.
type AdjustmentRepository struct {
	q Querier
}

// NewAdjustmentRepository creates a new PostgreSQL adjustment repository.
func NewAdjustmentRepository(db *sql.DB) *AdjustmentRepository {
	return &AdjustmentRepository{q: db}
}

const adjustmentColumns = `id, user_id, delta, reason, ride_id, status, idempotency_key, attempts, last_error, created_at, updated_at`

// Create persists a new journal row.
func (r *AdjustmentRepository) Create(ctx context.Context, adj *domain.PointsAdjustment) error {
	query := `
		INSERT INTO points_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var rideID sql.NullInt64
	if adj.RideID > 0 {
		rideID = sql.NullInt64{Int64: adj.RideID, Valid: true}
	}

	var lastError sql.NullString
	if adj.LastError != "" {
		lastError = sql.NullString{String: adj.LastError, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		adj.ID,
		adj.UserID,
		adj.Delta,
		adj.Reason,
		rideID,
		adj.Status,
		adj.IdempotencyKey,
		adj.Attempts,
		lastError,
		adj.CreatedAt,
		adj.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByIdempotencyKey retrieves a row by its idempotency key.
// Returns nil if no row exists with the given key.
func (r *AdjustmentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.PointsAdjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM points_adjustments WHERE idempotency_key = $1`

	adj, err := scanAdjustment(r.q.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// ListPending returns up to limit pending rows, oldest first.
func (r *AdjustmentRepository) ListPending(ctx context.Context, limit int) ([]*domain.PointsAdjustment, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM points_adjustments WHERE status = $1
		ORDER BY created_at ASC LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, domain.AdjustmentStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []*domain.PointsAdjustment
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

// UpdateStatus records the outcome of an attempt to apply a row.
func (r *AdjustmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AdjustmentStatus, attempts int, lastError string) error {
	query := `
		UPDATE points_adjustments
		SET status = $1, attempts = $2, last_error = $3, updated_at = $4
		WHERE id = $5
	`

	var lastErr sql.NullString
	if lastError != "" {
		lastErr = sql.NullString{String: lastError, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query, status, attempts, lastErr, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdjustment(row rowScanner) (*domain.PointsAdjustment, error) {
	var adj domain.PointsAdjustment
	var rideID sql.NullInt64
	var lastError sql.NullString

	err := row.Scan(
		&adj.ID,
		&adj.UserID,
		&adj.Delta,
		&adj.Reason,
		&rideID,
		&adj.Status,
		&adj.IdempotencyKey,
		&adj.Attempts,
		&lastError,
		&adj.CreatedAt,
		&adj.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rideID.Valid {
		adj.RideID = rideID.Int64
	}
	if lastError.Valid {
		adj.LastError = lastError.String
	}
	return &adj, nil
}

// Ensure concrete types implement interfaces.
var (
	_ repository.AdjustmentRepository = (*AdjustmentRepository)(nil)
	_ repository.AccountRepository    = (*AccountRepository)(nil)
)
