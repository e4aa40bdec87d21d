// Author: momentics <momentics@gmail.com>

// Package reactor provides the readability notifier behind the host's
// fd-readiness hook: epoll on Linux, a stub elsewhere. Chat-client plugin
// runtimes bring their own; the reference hostloop uses this one.
package reactor
