// File: task/future.go
// Author: momentics <momentics@gmail.com>
//
// Single-assignment result cells. A Future settles exactly once; settling it
// twice is a programming error and panics.

package task

import "fmt"

// FutureState enumerates the lifecycle states of a Future.
type FutureState uint8

const (
	StatePending FutureState = iota
	StateResolved
	StateFailed
)

// Future is a single-assignment result cell identified by a unique id.
// The id is what the host's callback dispatch uses to route a raw completion
// back to the cell.
//
// A pending Future usually has at most one waiter. Shared futures (Memo,
// fan-in initialization) may accumulate several; they are resumed in arrival
// order within the same dispatch turn.
type Future[T any] struct {
	id      string
	state   FutureState
	value   T
	err     error
	waiters []*Task
}

// NewFuture allocates a pending Future with a fresh unique id.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{id: NewID()}
}

// ID returns the callback id of f.
func (f *Future[T]) ID() string {
	return f.id
}

// State returns the current lifecycle state of f.
func (f *Future[T]) State() FutureState {
	return f.state
}

// Done reports whether f has settled.
func (f *Future[T]) Done() bool {
	return f.state != StatePending
}

// Resolve settles f with a value and resumes any waiter. Each waiter runs to
// its own next suspension point before Resolve returns. Resolve panics if f
// has already settled.
func (f *Future[T]) Resolve(value T) {
	if f.state != StatePending {
		panic(fmt.Sprintf("task: future %s settled twice", f.id))
	}
	f.state = StateResolved
	f.value = value
	f.wakeWaiters(resumption{value: value})
}

// Fail settles f with an error. The error is raised at each waiter's
// suspension point. Fail panics if f has already settled.
func (f *Future[T]) Fail(err error) {
	if f.state != StatePending {
		panic(fmt.Sprintf("task: future %s settled twice", f.id))
	}
	f.state = StateFailed
	f.err = err
	f.wakeWaiters(resumption{err: err})
}

func (f *Future[T]) wakeWaiters(r resumption) {
	waiters := f.waiters
	f.waiters = nil
	for _, w := range waiters {
		w.resume(r)
	}
}

// Await suspends t until f settles, then returns the value or the error that
// settled it. A settled future can be awaited any number of times without
// suspending.
func (f *Future[T]) Await(t *Task) (T, error) {
	switch f.state {
	case StateResolved:
		return f.value, nil
	case StateFailed:
		var zero T
		return zero, f.err
	}

	f.waiters = append(f.waiters, t)
	r := t.suspend()
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	// The comma-ok form tolerates nil markers: hosts may deliver any value,
	// including nothing at all, for timer and readiness callbacks.
	v, _ := r.value.(T)
	return v, nil
}

// Gather awaits every future in order and collects the resolved values.
// The first failure is returned immediately; remaining futures keep their
// eventual results, which are simply never consumed.
func Gather[T any](t *Task, futures ...*Future[T]) ([]T, error) {
	values := make([]T, 0, len(futures))
	for _, f := range futures {
		v, err := f.Await(t)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
