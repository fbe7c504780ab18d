// Package cache provides a small key-value cache used to memoize expensive
// repository scans between runs.
//
// Two backends are available:
//
//   - [FileCache]: JSON entries below a directory, one file per key
//   - [NullCache]: a no-op backend for --no-cache and tests
//
// Keys are built with [ScanKey] so that an entry is invalidated whenever the
// scanned file changes size or modification time.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	// An expired or unreadable entry is reported as a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
