package gateway

import (
	"context"
	"errors"
)

// ErrPending is returned by Call.Result while the call is still loading.
var ErrPending = errors.New("call still loading")

// Call is the handle for one in-flight gateway operation. It settles exactly once.
type Call[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newCall[T any]() *Call[T] {
	return &Call[T]{done: make(chan struct{})}
}

func (c *Call[T]) settle(v T, err error) {
	c.val, c.err = v, err
	close(c.done)
}

// Done is closed once the call has settled.
func (c *Call[T]) Done() <-chan struct{} { return c.done }

// Loading reports whether the call has not settled yet.
func (c *Call[T]) Loading() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Err returns the failure of a settled call, or nil.
func (c *Call[T]) Err() error {
	if c.Loading() {
		return nil
	}
	return c.err
}

// Result returns the settled value without blocking.
func (c *Call[T]) Result() (T, error) {
	if c.Loading() {
		var zero T
		return zero, ErrPending
	}
	return c.val, c.err
}

// Wait blocks until the call settles or ctx is done. Giving up on the wait does not
// abort the operation; its mutation still lands.
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
