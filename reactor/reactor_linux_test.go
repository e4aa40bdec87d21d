// File: reactor/reactor_linux_test.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor_test

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/chatloop/reactor"
)

func pipeFDs(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestNotifiesOnReadable(t *testing.T) {
	p, err := reactor.New()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	r, w := pipeFDs(t)
	fired := make(chan struct{}, 8)
	if err := p.Register(uintptr(r), func() { fired <- struct{}{} }); err != nil {
		t.Fatal(err)
	}

	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("readable fd never notified")
	}
}

func TestUnregisterStopsNotifications(t *testing.T) {
	p, err := reactor.New()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	r, w := pipeFDs(t)
	fired := make(chan struct{}, 8)
	if err := p.Register(uintptr(r), func() { fired <- struct{}{} }); err != nil {
		t.Fatal(err)
	}
	if err := p.Unregister(uintptr(r)); err != nil {
		t.Fatal(err)
	}

	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Fatal("unregistered fd still notified")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCloseStopsPolling(t *testing.T) {
	p, err := reactor.New()
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- p.Close() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return; poll goroutine stuck")
	}
}
