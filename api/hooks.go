// File: api/hooks.go
// Author: momentics <momentics@gmail.com>
//
// Host hook interfaces. The core never blocks on these; each hook arms an
// operation with the host and returns immediately. Results come back later
// through Dispatcher.Dispatch with the callback id the hook was armed with.

package api

import "time"

// TimerHook arms a one-shot timer. After delay the host must deliver exactly
// one payload (an arbitrary marker value) for callbackID.
type TimerHook interface {
	HookTimer(delay time.Duration, callbackID string)
}

// ProcessHook spawns an external command described by command and options.
// The command descriptor follows the WeeChat convention: either a plain
// shell command, or "url:<url>" for an HTTP fetch where options carry the
// transfer settings. On completion (or kill after timeout) the host must
// deliver exactly one ProcessResult for callbackID.
type ProcessHook interface {
	HookProcess(command string, options map[string]string, timeout time.Duration, callbackID string)
}

// ReadinessHook watches a file descriptor for readability. The host delivers
// zero or more payload-less notifications for callbackID, one per readiness
// transition, until UnhookFD is called.
type ReadinessHook interface {
	HookFD(fd uintptr, callbackID string) error
	UnhookFD(fd uintptr) error
}

// Host aggregates every hook the core needs from its event loop.
type Host interface {
	TimerHook
	ProcessHook
	ReadinessHook
}

// Dispatcher is the single core-facing entry point a host delivers results
// into. Dispatch must only ever be called from the host's loop thread;
// calls never overlap.
type Dispatcher interface {
	Dispatch(callbackID string, payload any)
}

// ProcessResult is the payload a host delivers for a ProcessHook completion.
type ProcessResult struct {
	Stdout     string
	ReturnCode int
	Stderr     string
}
