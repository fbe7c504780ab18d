package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. Every lookup is a miss, so callers always scan.
// Used for --no-cache and when no cache directory is available.
type NullCache struct{}

// NewNullCache returns a Cache that never hits.
func NewNullCache() Cache { return &NullCache{} }

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
