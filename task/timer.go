// File: task/timer.go
// Author: momentics <momentics@gmail.com>
//
// Timer primitive built on the host's one-shot timer hook.

package task

import "time"

// Sleep suspends t for at least d, driven by the host timer hook. It returns
// the marker payload the host delivered, verbatim.
//
// Timers have no cancellation: a fired timer whose result is no longer
// wanted is simply dropped by Dispatch.
func Sleep(t *Task, d time.Duration) any {
	f := NewFuture[any]()
	s := t.sched
	s.register(f.ID(), f.Resolve)
	s.host.HookTimer(d, f.ID())
	v, _ := f.Await(t) // timer futures never fail
	return v
}
