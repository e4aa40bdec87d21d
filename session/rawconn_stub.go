// File: session/rawconn_stub.go
//go:build !linux

// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without raw fd socket support.

package session

import (
	"net"
	"time"

	"github.com/momentics/chatloop/api"
)

type rawConn struct {
	net.Conn
}

func dialRaw(host string, port int, timeout time.Duration) (*rawConn, error) {
	return nil, api.ErrNotSupported
}

func (c *rawConn) SetNonblock(bool) error { return api.ErrNotSupported }
func (c *rawConn) Fd() uintptr            { return 0 }
