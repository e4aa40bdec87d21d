// Author: momentics <momentics@gmail.com>

// Package session owns the persistent duplex connection of a chat workspace:
// connection setup through an optional proxy and TLS, the non-blocking
// readiness-driven read loop that feeds inbound frames to upstream handling,
// and outbound data/ping frames.
//
// The read loop never blocks the host: the socket is switched to
// non-blocking mode immediately after setup, and a read that would block
// simply ends the current readiness turn. Reconnection policy belongs to the
// caller; the session only reports the error and removes its hooks.
package session
