package orchestration

import (
	"context"
	"fmt"
)

// Future holds the result of an asynchronous task. It resolves exactly once.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Async runs fn on a new goroutine. A panic inside fn resolves the future with a Failure.
func Async[T any](kind FailureKind, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = &Failure{Kind: kind, Message: "task panicked", Cause: fmt.Errorf("%v", r)}
			}
		}()
		f.value, f.err = fn()
	}()
	return f
}

// Resolved returns a future that already holds value.
func Resolved[T any](value T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value}
	close(f.done)
	return f
}

// Failed returns a future that already holds err.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the task finishes or ctx is done. Giving up on the wait does not
// stop the task.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
