package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// DefaultMaxCompensationAttempts bounds how often a pending adjustment is retried.
const DefaultMaxCompensationAttempts = 20

// Ledger is the points ledger contract used by the ride lifecycle.
// This interface allows for testing with mock implementations.
type Ledger interface {
	Balance(ctx context.Context, userID string) (int, error)
	Adjust(ctx context.Context, req AdjustRequest) (int, error)
	Compensate(ctx context.Context, req AdjustRequest) (credited bool, err error)
}

// Ensure LedgerService implements Ledger.
var _ Ledger = (*LedgerService)(nil)

// LedgerService applies points adjustments and keeps the adjustment journal.
type LedgerService struct {
	points      repository.PointsRepository
	journal     repository.AdjustmentRepository
	maxAttempts int
}

// NewLedgerService creates a new LedgerService. journal may be nil, in which case
// adjustments are not journaled and failed compensations cannot be deferred.
func NewLedgerService(points repository.PointsRepository, journal repository.AdjustmentRepository, maxAttempts int) *LedgerService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxCompensationAttempts
	}
	return &LedgerService{
		points:      points,
		journal:     journal,
		maxAttempts: maxAttempts,
	}
}

// AdjustRequest contains the parameters for a points adjustment.
type AdjustRequest struct {
	UserID         string
	Delta          int
	Reason         domain.AdjustmentReason
	RideID         int64
	IdempotencyKey string // Optional: replays with the same key are not applied twice.
}

// Balance returns the current balance of userID.
func (s *LedgerService) Balance(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrInvalidUserID
	}
	return s.points.Balance(ctx, userID)
}

// Adjust applies the adjustment and journals it. Journal failures are logged and
// never undo an applied adjustment.
func (s *LedgerService) Adjust(ctx context.Context, req AdjustRequest) (int, error) {
	if err := validateAdjust(req); err != nil {
		return 0, err
	}

	balance, applied, err := s.points.Adjust(ctx, req.UserID, req.Delta, req.IdempotencyKey)
	if err != nil {
		return 0, err
	}

	if applied {
		s.record(ctx, req, domain.AdjustmentStatusApplied, "")
	}

	return balance, nil
}

// Compensate applies a credit that reverses an earlier debit or pays a reward. If the
// credit cannot be applied now it is written to the journal as pending for
// ProcessPending to retry, and credited is false.
func (s *LedgerService) Compensate(ctx context.Context, req AdjustRequest) (bool, error) {
	if err := validateAdjust(req); err != nil {
		return false, err
	}

	_, err := s.Adjust(ctx, req)
	if err == nil {
		return true, nil
	}

	if s.journal == nil {
		return false, err
	}

	pending := newAdjustment(req, domain.AdjustmentStatusPending, err.Error())
	pending.Attempts = 1
	if jerr := s.journal.Create(ctx, pending); jerr != nil && !errors.Is(jerr, repository.ErrDuplicate) {
		log.Printf("ledger: failed to defer compensation %s for %s: %v", req.IdempotencyKey, req.UserID, jerr)
		return false, err
	}

	log.Printf("ledger: deferred compensation %s for %s: %v", req.IdempotencyKey, req.UserID, err)
	return false, nil
}

// ProcessPending retries up to limit deferred compensations and returns how many were applied.
func (s *LedgerService) ProcessPending(ctx context.Context, limit int) (int, error) {
	if s.journal == nil {
		return 0, nil
	}

	pending, err := s.journal.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, adj := range pending {
		_, _, err := s.points.Adjust(ctx, adj.UserID, adj.Delta, adj.IdempotencyKey)
		attempts := adj.Attempts + 1

		if err == nil {
			if uerr := s.journal.UpdateStatus(ctx, adj.ID, domain.AdjustmentStatusApplied, attempts, ""); uerr != nil {
				return applied, uerr
			}
			applied++
			continue
		}

		status := domain.AdjustmentStatusPending
		if attempts >= s.maxAttempts {
			status = domain.AdjustmentStatusFailed
		}
		if uerr := s.journal.UpdateStatus(ctx, adj.ID, status, attempts, err.Error()); uerr != nil {
			return applied, uerr
		}
	}

	return applied, nil
}

func (s *LedgerService) record(ctx context.Context, req AdjustRequest, status domain.AdjustmentStatus, lastError string) {
	if s.journal == nil {
		return
	}

	// A pending row for this key means the worker applied it; keep that row.
	if req.IdempotencyKey != "" {
		existing, err := s.journal.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil && existing != nil {
			return
		}
	}

	if err := s.journal.Create(ctx, newAdjustment(req, status, lastError)); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		log.Printf("ledger: failed to journal %s %+d for %s: %v", req.Reason, req.Delta, req.UserID, err)
	}
}

func newAdjustment(req AdjustRequest, status domain.AdjustmentStatus, lastError string) *domain.PointsAdjustment {
	now := time.Now()
	key := req.IdempotencyKey
	if key == "" {
		key = "adhoc:" + uuid.New().String()
	}
	return &domain.PointsAdjustment{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		Delta:          req.Delta,
		Reason:         req.Reason,
		RideID:         req.RideID,
		Status:         status,
		IdempotencyKey: key,
		LastError:      lastError,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func validateAdjust(req AdjustRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return ErrInvalidUserID
	}
	if req.Delta == 0 {
		return ErrInvalidAdjustment
	}
	return nil
}
