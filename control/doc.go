// Author: momentics <momentics@gmail.com>

// Package control carries the runtime knobs and observability surface of
// chatloop: a thread-safe configuration store with reload listeners, and the
// Prometheus collectors the core reports into. Persistent configuration
// storage belongs to the embedding client, not to this package.
package control
