// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readability notifier interface.

package reactor

// Reactor watches file descriptors and reports readability transitions.
type Reactor interface {
	// Register adds fd to the watch set. notify is invoked from the
	// reactor's polling goroutine each time fd becomes readable, and once
	// more with readable hang-up/error conditions so the reader observes
	// the failure on its next drain.
	Register(fd uintptr, notify func()) error

	// Unregister removes fd from the watch set. No notifications for fd
	// are delivered after Unregister returns.
	Unregister(fd uintptr) error

	// Close stops the polling goroutine and releases resources.
	Close() error
}
