// File: session/rawconn_linux.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw file-descriptor connection. The session needs the fd for readiness
// registration and needs reads to report would-block instead of parking the
// host loop, neither of which the runtime-pollered net.Conn can give us.

package session

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/chatloop/api"
)

// rawConn is a minimal net.Conn over an owned socket fd.
type rawConn struct {
	fd          int
	local       net.Addr
	remote      net.Addr
	writeWaitMs int
}

// dialRaw opens a TCP connection to host:port with a bounded connect. The
// returned conn is in blocking mode with send/receive timeouts armed, which
// covers the proxy, TLS, and upgrade exchanges; callers switch it to
// non-blocking once setup is done.
func dialRaw(host string, port int, timeout time.Duration) (*rawConn, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}

	var dialErr error
	for _, ip := range ips {
		var c *rawConn
		c, dialErr = connectIP(ip, port, timeout)
		if dialErr == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("connect %s:%d: %w", host, port, dialErr)
}

func connectIP(ip net.IP, port int, timeout time.Duration) (*rawConn, error) {
	family := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := ip.To4(); ip4 != nil {
		sa4 := &unix.SockaddrInet4{Port: port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		family = unix.AF_INET6
		sa6 := &unix.SockaddrInet6{Port: port}
		copy(sa6.Addr[:], ip.To16())
		sa = sa6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

	// Non-blocking connect with a poll(2) bounded wait.
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}
	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return nil, fmt.Errorf("connect: %w", err)
	} else if err == unix.EINPROGRESS {
		if err := waitWritable(fd, timeout); err != nil {
			unix.Close(fd)
			return nil, err
		}
		soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("getsockopt: %w", err)
		}
		if soErr != 0 {
			unix.Close(fd)
			return nil, fmt.Errorf("connect: %w", unix.Errno(soErr))
		}
	}

	// Back to blocking for the setup exchanges, bounded by socket timeouts.
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set blocking: %w", err)
	}
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	_ = unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
	_ = unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv)

	c := &rawConn{fd: fd, writeWaitMs: int(timeout / time.Millisecond)}
	if lsa, err := unix.Getsockname(fd); err == nil {
		c.local = sockaddrToTCP(lsa)
	}
	if rsa, err := unix.Getpeername(fd); err == nil {
		c.remote = sockaddrToTCP(rsa)
	}
	return c, nil
}

func waitWritable(fd int, timeout time.Duration) error {
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	n, err := unix.Poll(pfd, int(timeout/time.Millisecond))
	if err != nil {
		return fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("connect: %w", os.ErrDeadlineExceeded)
	}
	return nil
}

func sockaddrToTCP(sa unix.Sockaddr) net.Addr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	}
	return nil
}

// SetNonblock flips the fd's blocking mode.
func (c *rawConn) SetNonblock(nonblocking bool) error {
	return unix.SetNonblock(c.fd, nonblocking)
}

// Fd returns the descriptor for readiness registration.
func (c *rawConn) Fd() uintptr {
	return uintptr(c.fd)
}

// Read fills p with whatever is available. In non-blocking mode an empty
// socket yields api.ErrWouldBlock; an orderly shutdown yields io.EOF.
func (c *rawConn) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, api.ErrWouldBlock
		}
		return 0, os.NewSyscallError("read", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write sends all of p. Short writes and EAGAIN are retried after a bounded
// poll wait so that layers above never observe a would-block on the write
// path.
func (c *rawConn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fd, p[written:])
		if n > 0 {
			written += n
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				pfd := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLOUT}}
				if _, perr := unix.Poll(pfd, c.writeWaitMs); perr != nil {
					return written, os.NewSyscallError("poll", perr)
				}
				continue
			}
			return written, os.NewSyscallError("write", err)
		}
	}
	return written, nil
}

// Close releases the fd.
func (c *rawConn) Close() error {
	return unix.Close(c.fd)
}

func (c *rawConn) LocalAddr() net.Addr  { return c.local }
func (c *rawConn) RemoteAddr() net.Addr { return c.remote }

// Deadlines are unused: setup is bounded by socket timeouts and steady-state
// reads are non-blocking.
func (c *rawConn) SetDeadline(time.Time) error      { return nil }
func (c *rawConn) SetReadDeadline(time.Time) error  { return nil }
func (c *rawConn) SetWriteDeadline(time.Time) error { return nil }
