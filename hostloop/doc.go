// Author: momentics <momentics@gmail.com>

// Package hostloop is a reference implementation of the api.Host contract
// for standalone use: a single-threaded event loop with one-shot timers, an
// external process runner with kill-on-timeout, and fd readiness
// notifications via the reactor package.
//
// Inside a chat client the plugin runtime plays this role; hostloop exists
// so the core can be exercised, tested, and demoed without one. Deliveries
// are dispatched strictly in the order they were reported, from one
// goroutine, which is what gives the task scheduler its no-locks invariant.
package hostloop
