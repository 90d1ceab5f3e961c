package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rideshare/internal/repository"
)

// DefaultMaxTxRetries bounds optimistic transaction retries.
const DefaultMaxTxRetries = 10

// abortError carries an error returned by transaction logic, as opposed to a
// transport failure, through redis.Client.Watch.
type abortError struct {
	err error
}

func (e abortError) Error() string { return e.err.Error() }

func (e abortError) Unwrap() error { return e.err }

func abort(err error) error {
	return abortError{err: err}
}

// transact runs fn under WATCH on keys and retries while EXEC reports a conflict.
// Aborts are returned unwrapped; other failures are wrapped in kind.
func transact(ctx context.Context, client *redis.Client, maxRetries int, kind error, fn func(*redis.Tx) error, keys ...string) error {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxTxRetries
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := client.Watch(ctx, fn, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		var ab abortError
		if errors.As(err, &ab) {
			return ab.err
		}
		return fmt.Errorf("%w: %w", kind, err)
	}

	return fmt.Errorf("%w: gave up after %d conflicting attempts", repository.ErrStorageTransaction, maxRetries)
}
