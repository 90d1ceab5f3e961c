package service

import (
	"context"
	"fmt"
)

// Result carries the single outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// Go runs fn in its own goroutine and delivers exactly one Result on the returned
// channel. A panic in fn is delivered as an error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- Result[T]{Err: fmt.Errorf("async call panicked: %v", r)}
			}
		}()

		value, err := fn(ctx)
		ch <- Result[T]{Value: value, Err: err}
	}()

	return ch
}

// Await waits for the result of ch or for ctx to be done.
func Await[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
