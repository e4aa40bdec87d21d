// File: task/memo.go
// Author: momentics <momentics@gmail.com>
//
// Memo deduplicates per-key asynchronous initialization: the first lookup of
// a key spawns its create function exactly once, and every caller shares the
// same future. Chat clients use this for lazily populated per-entity state
// (users, bots) keyed by id.

package task

// Memo is a lazily populated cache of futures keyed by K.
// Like everything in this package, it must only be used from the host loop
// thread or a running task.
type Memo[K comparable, V any] struct {
	sched   *Scheduler
	create  func(t *Task, key K) (V, error)
	entries map[K]*Future[V]
}

// NewMemo returns an empty Memo whose missing keys are initialized by create.
func NewMemo[K comparable, V any](s *Scheduler, create func(t *Task, key K) (V, error)) *Memo[K, V] {
	return &Memo[K, V]{
		sched:   s,
		create:  create,
		entries: make(map[K]*Future[V]),
	}
}

// Get returns the future for key, spawning the create function on first use.
// The returned future is shared: concurrent requests for the same key all
// observe the single in-flight or completed initialization.
func (m *Memo[K, V]) Get(key K) *Future[V] {
	if f, ok := m.entries[key]; ok {
		return f
	}
	f := Spawn(m.sched, func(t *Task) (V, error) {
		return m.create(t, key)
	})
	m.entries[key] = f
	return f
}

// Await is shorthand for Get(key).Await(t).
func (m *Memo[K, V]) Await(t *Task, key K) (V, error) {
	return m.Get(key).Await(t)
}

// Put seeds key with an already spawned future, overwriting any previous
// entry. It supports batch initialization where one fetch settles many keys.
func (m *Memo[K, V]) Put(key K, f *Future[V]) {
	m.entries[key] = f
}

// Has reports whether key has an entry, in flight or completed.
func (m *Memo[K, V]) Has(key K) bool {
	_, ok := m.entries[key]
	return ok
}

// Len returns the number of cached entries.
func (m *Memo[K, V]) Len() int {
	return len(m.entries)
}
