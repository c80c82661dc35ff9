// Package storage provides flat key/value stores for node preferences.
// Every store is scoped to a single namespace.
package storage

import (
	"fmt"
	"strings"
)

// Store is a namespaced string key/value store.
type Store interface {
	// Get returns the value stored under key, and whether it exists.
	Get(key string) (value string, ok bool, err error)
	// Put writes a single value.
	Put(key string, value string) error

	// Begin starts a write transaction. Puts on the returned store become
	// visible only after Commit.
	Begin() (Store, error)
	// Commit commits a write transaction
	Commit() error
	// Rollback discards a write transaction
	Rollback() error

	// Close releases the backend.
	Close() error
}

// Config selects and locates a backend.
type Config struct {
	// memory | toml | badger | sqlite
	Backend string `json:"backend"`
	// Path of the database file or directory (unused for memory).
	Path string `json:"path"`
	// Namespace scoping all keys.
	Namespace string `json:"namespace"`
}

// Open creates the configured backend.
func Open(cfg Config) (Store, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("storage: empty namespace")
	}

	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(cfg.Namespace), nil
	case "toml":
		return NewTomlStore(cfg.Path, cfg.Namespace)
	case "badger":
		return NewBadgerStore(cfg.Path, cfg.Namespace)
	case "sqlite":
		return NewSqliteStore(cfg.Path, cfg.Namespace)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
