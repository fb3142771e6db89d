// Package cache stores computed layouts between runs.
//
// A layout depends only on the report bytes, the focus, the
// canonicalization options and the layout spacing, so it is keyed by a
// SHA-256 over all of them (see [Keyer]). Two implementations ship:
// [FileCache] for the CLI, and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
