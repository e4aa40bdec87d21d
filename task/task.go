// File: task/task.go
// Author: momentics <momentics@gmail.com>
//
// Task is a sequential computation that suspends at await points and is
// resumed by delivering a value or an error to the future it waits on.
//
// Suspension is implemented as a goroutine handoff: resume sends the
// resumption into the task goroutine and then blocks until the goroutine
// either reaches its next suspension point or finishes. From the host loop's
// point of view the whole resumption is one synchronous call, which is what
// keeps dispatch turns strictly ordered without locks.

package task

// resumption carries the value or error delivered at a suspension point.
type resumption struct {
	value any
	err   error
}

// Task is the handle a spawned computation uses to suspend itself.
// It is only valid inside the function passed to Spawn.
type Task struct {
	sched *Scheduler
	in    chan resumption
	out   chan struct{}
}

// Scheduler returns the scheduler that spawned t.
func (t *Task) Scheduler() *Scheduler {
	return t.sched
}

// resume hands r to the task goroutine and waits until the computation
// reaches its next suspension point or completes.
func (t *Task) resume(r resumption) {
	t.in <- r
	<-t.out
}

// suspend parks the task goroutine until the next resume. It first releases
// whoever is driving the task, completing their resume call.
func (t *Task) suspend() resumption {
	t.out <- struct{}{}
	return <-t.in
}

// Spawn starts fn as a new task and runs it synchronously up to its first
// suspension point (or completion). The returned future settles with fn's
// result once the computation finishes or fails.
//
// An unhandled panic inside fn is a programming error and is not recovered.
func Spawn[T any](s *Scheduler, fn func(t *Task) (T, error)) *Future[T] {
	result := NewFuture[T]()
	t := &Task{
		sched: s,
		in:    make(chan resumption),
		out:   make(chan struct{}),
	}

	go func() {
		<-t.in
		value, err := fn(t)
		// Settle before releasing the driver so that chained awaiters run
		// within the same dispatch turn.
		if err != nil {
			result.Fail(err)
		} else {
			result.Resolve(value)
		}
		t.out <- struct{}{}
	}()

	t.resume(resumption{})
	return result
}
