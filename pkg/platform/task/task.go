// Package task provides a one-shot asynchronous result that callers can await
// or subscribe to. It replaces ad hoc background-thread callbacks: whoever starts
// the work returns a *Task, and completion is signalled exactly once.
package task

import (
	"context"
	"fmt"
	"sync"
)

// Task is a value of type T that becomes available later, or an error.
type Task[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// New returns a pending task to be completed with Resolve or Reject.
func New[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// Failed returns a task already rejected with err.
func Failed[T any](err error) *Task[T] {
	t := New[T]()
	t.Reject(err)
	return t
}

// Go runs fn in a new goroutine and returns its task. A panic inside fn rejects
// the task instead of crashing the process, so Done always fires.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.Reject(fmt.Errorf("task panicked: %v", r))
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			t.Reject(err)
			return
		}
		t.Resolve(v)
	}()
	return t
}

// Resolve completes the task with v. Returns false if it was already complete.
func (t *Task[T]) Resolve(v T) bool {
	completed := false
	t.once.Do(func() {
		t.val = v
		close(t.done)
		completed = true
	})
	return completed
}

// Reject completes the task with err. Returns false if it was already complete.
func (t *Task[T]) Reject(err error) bool {
	completed := false
	t.once.Do(func() {
		t.err = err
		close(t.done)
		completed = true
	})
	return completed
}

// Done is closed once the task completes.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx ends.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking; ok is false while pending.
func (t *Task[T]) Result() (val T, err error, ok bool) {
	select {
	case <-t.done:
		return t.val, t.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
