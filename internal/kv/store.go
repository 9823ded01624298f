// Package kv provides the synchronous string-keyed LocalStore used when the
// remote document store is unavailable, and as the cache the facade falls
// back to on remote read failures.
package kv

import (
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is a synchronous string-keyed persistence surface.
type Store interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Close releases the underlying resources.
	Close() error
}

// Open creates a Store for the named backend. An empty backend selects the
// JSON file store.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown local backend: %s (supported: file, sqlite, memory)", backend)
	}
}
