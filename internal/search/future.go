package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// future is a value produced by a stage goroutine. It is written once,
// before done is closed, and only read after done is closed.
type future[T any] struct {
	done chan struct{}
	val  T
}

// spawn starts fn on g and returns its pending result.
func spawn[T any](g *errgroup.Group, fn func() T) *future[T] {
	f := &future[T]{done: make(chan struct{})}
	g.Go(func() error {
		defer close(f.done)
		f.val = fn()
		return nil
	})
	return f
}

// Await blocks until the value is ready. ok is false if ctx ended first,
// in which case the zero value is returned.
func (f *future[T]) Await(ctx context.Context) (v T, ok bool) {
	select {
	case <-f.done:
		return f.val, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}
