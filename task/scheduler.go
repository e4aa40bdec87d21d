// File: task/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scheduler owns the callback registry: the process-wide mapping from
// callback ids to the computations waiting on them. Host hooks only ever
// carry an id back; Dispatch routes the raw payload to the right place.

package task

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/chatloop/api"
	"github.com/momentics/chatloop/control"
)

var log = logrus.WithField("component", "task")

// registration binds a callback id to its delivery function. One-shot
// registrations are removed before delivery; persistent ones (socket
// readiness) stay until explicitly unregistered.
type registration struct {
	deliver    func(payload any)
	persistent bool
}

// Scheduler drives suspended tasks forward as the host delivers callback
// completions. It is not safe for concurrent use: all methods must be called
// from the host loop thread or from a running task.
type Scheduler struct {
	host    api.Host
	targets map[string]registration
}

var _ api.Dispatcher = (*Scheduler)(nil)

// NewScheduler creates a scheduler bound to a host.
func NewScheduler(host api.Host) *Scheduler {
	return &Scheduler{
		host:    host,
		targets: make(map[string]registration),
	}
}

// Host returns the host the scheduler arms hooks with.
func (s *Scheduler) Host() api.Host {
	return s.host
}

// register adds a one-shot delivery target for id.
func (s *Scheduler) register(id string, deliver func(payload any)) {
	if _, exists := s.targets[id]; exists {
		panic("task: callback id registered twice: " + id)
	}
	s.targets[id] = registration{deliver: deliver}
}

// RegisterHandler adds a persistent delivery target for id. It is used by
// sources that fire repeatedly, such as socket readiness notifications.
func (s *Scheduler) RegisterHandler(id string, deliver func(payload any)) {
	if _, exists := s.targets[id]; exists {
		panic("task: callback id registered twice: " + id)
	}
	s.targets[id] = registration{deliver: deliver, persistent: true}
}

// Unregister removes a delivery target. Removing an unknown id is a no-op.
func (s *Scheduler) Unregister(id string) {
	delete(s.targets, id)
}

// Dispatch is the single host-facing entry point. It routes payload to the
// target registered for id and runs the resumed computation to its next
// suspension point before returning.
//
// An unregistered id is tolerated: the result may have been delivered
// already, or its consumer may be gone. It is logged and counted, nothing
// more.
func (s *Scheduler) Dispatch(id string, payload any) {
	target, ok := s.targets[id]
	if !ok {
		log.WithField("callback_id", id).Debug("dispatch for unregistered id, dropping")
		control.StaleDispatches.Inc()
		return
	}
	if !target.persistent {
		delete(s.targets, id)
	}
	control.Dispatches.Inc()
	target.deliver(payload)
}

// Pending returns the number of currently registered callback ids.
func (s *Scheduler) Pending() int {
	return len(s.targets)
}
