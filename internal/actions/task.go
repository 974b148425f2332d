package actions

import (
	"context"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

// Task is an action running on its own goroutine.
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn and returns immediately. fn receives ctx unchanged, so
// cancelling ctx reaches every suspend point inside the action.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.val, t.err = fn(ctx)
	}()
	return t
}

func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the action finishes or ctx ends. The action keeps its
// own context, so giving up here does not cancel it.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, failure.FromContext(ctx)
	}
}
