package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// PointsStore is a Redis implementation of repository.PointsRepository.
// Balances live under userPoints:{encodedUserId}; the keys of applied idempotent
// adjustments are remembered per user in userPointsApplied:{encodedUserId}.
type PointsStore struct {
	client     *redis.Client
	maxRetries int
}

// NewPointsStore creates a new PointsStore.
func NewPointsStore(client *redis.Client, maxRetries int) *PointsStore {
	return &PointsStore{client: client, maxRetries: maxRetries}
}

// Balance returns the stored balance, or the starting balance if none exists.
// It never creates a record.
func (s *PointsStore) Balance(ctx context.Context, userID string) (int, error) {
	balance, err := s.client.Get(ctx, pointsKey(userID)).Int()
	if err == redis.Nil {
		return domain.StartingBalance, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Adjust applies delta with a read-modify-write transaction. A debit larger than
// the current balance aborts without writing and returns ErrInsufficientPoints.
func (s *PointsStore) Adjust(ctx context.Context, userID string, delta int, key string) (int, bool, error) {
	balanceKey := pointsKey(userID)
	seenKey := appliedKey(userID)

	watched := []string{balanceKey}
	if key != "" {
		watched = append(watched, seenKey)
	}

	var (
		balance int
		applied bool
	)

	err := transact(ctx, s.client, s.maxRetries, repository.ErrStorageTransaction, func(tx *redis.Tx) error {
		applied = false

		current, err := tx.Get(ctx, balanceKey).Int()
		if err == redis.Nil {
			current = domain.StartingBalance
		} else if err != nil {
			return err
		}

		if key != "" {
			seen, err := tx.SIsMember(ctx, seenKey, key).Result()
			if err != nil {
				return err
			}
			if seen {
				balance = current
				return nil
			}
		}

		if delta < 0 && current < -delta {
			return abort(repository.ErrInsufficientPoints)
		}

		next := current + delta
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, balanceKey, strconv.Itoa(next), 0)
			if key != "" {
				pipe.SAdd(ctx, seenKey, key)
			}
			return nil
		})
		if err != nil {
			return err
		}

		balance = next
		applied = true
		return nil
	}, watched...)
	if err != nil {
		return 0, false, err
	}

	return balance, applied, nil
}
