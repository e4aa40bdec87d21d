// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error types and error classification helpers shared across the
// chatloop packages.

package api

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// Common errors used across the library.
var (
	ErrConnClosed    = fmt.Errorf("connection is closed")
	ErrInvalidFrame  = fmt.Errorf("invalid protocol frame")
	ErrNotSupported  = fmt.Errorf("operation not supported on this platform")
	ErrStaleCallback = fmt.Errorf("callback id is not registered")
)

// wouldBlockError reports that a non-blocking read found no data. It
// satisfies net.Error with Timeout() == true so that crypto/tls treats it as
// a resumable condition rather than poisoning the connection.
type wouldBlockError struct{}

func (wouldBlockError) Error() string   { return "operation would block" }
func (wouldBlockError) Timeout() bool   { return true }
func (wouldBlockError) Temporary() bool { return true }

// ErrWouldBlock is returned by non-blocking reads when no data is currently
// available. It is a clean stop condition for the read loop, not a failure.
var ErrWouldBlock error = wouldBlockError{}

// IsWouldBlock reports whether err means "no data available right now".
// Deadline errors from wrapped net.Conn layers count as well, since the TLS
// layer surfaces the underlying would-block condition that way.
func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrWouldBlock) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
