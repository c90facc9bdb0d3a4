// Package cache defines the byte-level Cache interface implemented by every
// storage backend (diskcache, freecache, redis, leveldbcache, and their
// wrapper compositions). It is split out from the root httpcache package,
// which re-exports it as httpcache.Cache, so that storage.Serialized can
// depend on it without importing the root package.
package cache

import "context"

// Cache get/sets/deletes serialized cache entry bytes under a string key.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the bytes for key, and whether they were found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, overwriting any prior value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key, if present.
	Delete(ctx context.Context, key string) error
}
