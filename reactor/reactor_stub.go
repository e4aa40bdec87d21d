// File: reactor/reactor_stub.go
//go:build !linux

// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without a poller implementation.

package reactor

import "github.com/momentics/chatloop/api"

type stubReactor struct{}

// New returns a Reactor that rejects every registration.
func New() (Reactor, error) {
	return stubReactor{}, nil
}

func (stubReactor) Register(uintptr, func()) error { return api.ErrNotSupported }
func (stubReactor) Unregister(uintptr) error       { return api.ErrNotSupported }
func (stubReactor) Close() error                   { return nil }
