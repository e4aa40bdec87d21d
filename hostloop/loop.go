// File: hostloop/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-threaded delivery loop. Completion sources (timers, process
// watchers, the reactor) post deliveries from their own goroutines; the loop
// goroutine drains them in arrival order into the dispatcher. There is no
// back pressure: the pending queue grows as needed.

package hostloop

import (
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"

	"github.com/momentics/chatloop/api"
	"github.com/momentics/chatloop/reactor"
)

var log = logrus.WithField("component", "hostloop")

type delivery struct {
	id      string
	payload any
	fn      func() // Submit closure; bypasses the dispatcher
}

// Loop implements api.Host. Construct with New, point it at a dispatcher,
// then call Run from the goroutine that owns all core state.
type Loop struct {
	mu      sync.Mutex
	pending *queue.Queue
	wake    chan struct{}
	stop    chan struct{}
	once    sync.Once

	dispatcher api.Dispatcher
	poller     reactor.Reactor
}

var _ api.Host = (*Loop)(nil)

// New creates a Loop with its own reactor.
func New() (*Loop, error) {
	poller, err := reactor.New()
	if err != nil {
		return nil, fmt.Errorf("hostloop: %w", err)
	}
	return &Loop{
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		poller:  poller,
	}, nil
}

// SetDispatcher wires the core's dispatch entry point. Must be called before
// Run; the usual sequence is New, task.NewScheduler(loop), SetDispatcher.
func (l *Loop) SetDispatcher(d api.Dispatcher) {
	l.dispatcher = d
}

// Run drains deliveries until Stop is called. All Dispatch calls happen on
// the calling goroutine.
func (l *Loop) Run() {
	for {
		select {
		case <-l.stop:
			l.drain()
			return
		case <-l.wake:
			l.drain()
		}
	}
}

// Stop terminates Run after the already-posted deliveries drain, and shuts
// the reactor down.
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.stop)
		_ = l.poller.Close()
	})
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if l.pending.Length() == 0 {
			l.mu.Unlock()
			return
		}
		d := l.pending.Remove().(delivery)
		l.mu.Unlock()

		if d.fn != nil {
			d.fn()
			continue
		}
		l.dispatcher.Dispatch(d.id, d.payload)
	}
}

// Submit runs fn on the loop goroutine, ordered with the other deliveries.
// It is how goroutines outside the loop (or code running before Run) hand
// work to the core.
func (l *Loop) Submit(fn func()) {
	l.mu.Lock()
	l.pending.Add(delivery{fn: fn})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// post enqueues a delivery from any goroutine and wakes the loop.
func (l *Loop) post(id string, payload any) {
	l.mu.Lock()
	l.pending.Add(delivery{id: id, payload: payload})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// HookTimer arms a one-shot timer delivering an opaque zero marker.
func (l *Loop) HookTimer(delay time.Duration, callbackID string) {
	time.AfterFunc(delay, func() {
		l.post(callbackID, int64(0))
	})
}

// HookFD watches fd for readability and posts a payload-less delivery per
// transition.
func (l *Loop) HookFD(fd uintptr, callbackID string) error {
	return l.poller.Register(fd, func() {
		l.post(callbackID, nil)
	})
}

// UnhookFD stops watching fd.
func (l *Loop) UnhookFD(fd uintptr) error {
	return l.poller.Unregister(fd)
}
