// File: reactor/reactor_linux.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7) implementation.

package reactor

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

type epollReactor struct {
	epfd   int
	wakeFd int // eventfd used to interrupt EpollWait on Close

	mu        sync.Mutex
	callbacks map[uintptr]func()
	closed    bool
	done      chan struct{}
}

// New constructs the epoll-backed Reactor and starts its polling goroutine.
func New() (Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, ev); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wake: %w", err)
	}

	r := &epollReactor{
		epfd:      epfd,
		wakeFd:    wakeFd,
		callbacks: make(map[uintptr]func()),
		done:      make(chan struct{}),
	}
	go r.poll()
	return r, nil
}

// Register adds fd to the epoll watch set, level-triggered.
func (r *epollReactor) Register(fd uintptr, notify func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("reactor is closed")
	}
	ev := &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	r.callbacks[fd] = notify
	return nil
}

// Unregister removes fd from the watch set. A notification already in
// flight may still land; consumers tolerate stale deliveries.
func (r *epollReactor) Unregister(fd uintptr) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	delete(r.callbacks, fd)
	return nil
}

func (r *epollReactor) poll() {
	defer close(r.done)
	events := make([]unix.EpollEvent, 64)
	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		for i := 0; i < n; i++ {
			fd := uintptr(events[i].Fd)
			if int(fd) == r.wakeFd {
				return // Close requested
			}
			r.mu.Lock()
			notify := r.callbacks[fd]
			closed := r.closed
			r.mu.Unlock()
			if closed {
				return
			}
			if notify != nil {
				notify()
			}
		}
	}
}

// Close wakes the polling goroutine, waits for it to exit, and releases the
// epoll instance.
func (r *epollReactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1) // eventfd counter increment
	_, _ = unix.Write(r.wakeFd, one[:])
	<-r.done

	unix.Close(r.wakeFd)
	return unix.Close(r.epfd)
}
