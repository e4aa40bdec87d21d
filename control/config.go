// File: control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with atomic snapshots and reload
// propagation. The embedding client owns persistence; this store only holds
// the live values the core reads.

package control

import (
	"sync"
	"time"
)

// Config is an immutable snapshot of the core's runtime settings.
type Config struct {
	// NetworkTimeout bounds connection setup and each HTTP transfer.
	NetworkTimeout time.Duration
	// MaxRetries is the default retry budget of the HTTP engine.
	MaxRetries int
	// RetryDelay is the fixed backoff between retryable HTTP failures.
	RetryDelay time.Duration
	// Proxy describes the outbound proxy, if any. Type may be "" (direct)
	// or "http". Resolution of these values is up to the embedding client.
	Proxy ProxyConfig
}

// ProxyConfig carries resolved proxy settings for connection setup.
type ProxyConfig struct {
	Type     string
	Host     string
	Port     int
	Username string
	Password string
}

// DefaultConfig returns the settings used when the embedding client supplies
// nothing.
func DefaultConfig() Config {
	return Config{
		NetworkTimeout: 30 * time.Second,
		MaxRetries:     5,
		RetryDelay:     time.Second,
	}
}

// ConfigStore holds the current Config and notifies listeners on updates.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with the given initial snapshot.
func NewConfigStore(initial Config) *ConfigStore {
	return &ConfigStore{config: initial}
}

// Snapshot returns the current configuration.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// Update replaces the configuration and dispatches reload listeners.
func (cs *ConfigStore) Update(cfg Config) {
	cs.mu.Lock()
	cs.config = cfg
	listeners := make([]func(Config), len(cs.listeners))
	copy(listeners, cs.listeners)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnReload registers a listener invoked after every Update.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	cs.listeners = append(cs.listeners, fn)
	cs.mu.Unlock()
}
