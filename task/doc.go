// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package task implements the cooperative future/task scheduler at the heart
// of chatloop.
//
// Application code is written in direct, sequential style: a function spawned
// with Spawn receives a *Task handle and calls Sleep, Run, or Future.Await,
// each of which suspends the computation until the host event loop delivers
// the matching callback. Delivery enters through Scheduler.Dispatch, the
// single host-facing entry point, which resumes exactly the computation
// waiting on that callback id.
//
// Everything here assumes the host loop is single-threaded: Dispatch calls
// never overlap, and a resumed computation runs to its next suspension point
// before control returns to the host. No locks guard the registry or future
// state; sequencing is enforced by the resume/suspend handoff itself.
package task
