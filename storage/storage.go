// Package storage implements Storage, the key→entry mapping with an atomic
// compare-and-swap update primitive that CachingExecutor, CacheInvalidator,
// and the async revalidator all serialize their mutations through.
package storage

import (
	"context"
	"fmt"

	"github.com/relaycache/httpcache/entry"
)

// Transformer computes a new entry from the current one (nil if absent).
// Returning nil removes the key. Update applies it atomically via
// compare-and-swap retry, so Transformer may be invoked more than once under
// contention and must be side-effect free beyond its return value.
type Transformer func(old *entry.CacheEntry) (*entry.CacheEntry, error)

// Storage is a key→entry mapping safe for concurrent use. Per key, Update is
// linearizable: concurrent updates converge to a last-writer-wins result
// without torn reads.
type Storage interface {
	Get(ctx context.Context, key string) (*entry.CacheEntry, bool, error)
	Put(ctx context.Context, key string, e *entry.CacheEntry) error
	Remove(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn Transformer) error
}

// ErrEntryDisposed is returned when a transformer observes an entry whose
// resource has already been disposed by a concurrent replacement.
var ErrEntryDisposed = fmt.Errorf("storage: entry resource already disposed")
