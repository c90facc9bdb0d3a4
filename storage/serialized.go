package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/relaycache/httpcache/cache"
	"github.com/relaycache/httpcache/entry"
	"github.com/relaycache/httpcache/serializer"
)

// Serialized adapts any byte-level cache.Cache backend (diskcache, freecache,
// redis, leveldbcache, or a wrapper/* composition of them) into a Storage by
// round-tripping entries through an EntrySerializer. A SerializationError
// (corrupt or disallowed payload) is treated as a miss and the offending key
// is removed, per spec.md §7.
type Serialized struct {
	backend    cache.Cache
	serializer serializer.EntrySerializer
}

// NewSerialized returns a Storage that persists entries as bytes in backend.
func NewSerialized(backend cache.Cache, s serializer.EntrySerializer) *Serialized {
	return &Serialized{backend: backend, serializer: s}
}

// Get returns the deserialized entry for key, if present and well-formed.
func (s *Serialized) Get(ctx context.Context, key string) (*entry.CacheEntry, bool, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("storage: backend get failed: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	e, err := s.serializer.Read(data, key)
	if err != nil {
		// SerializationError: treat as miss and remove the offending key.
		_ = s.backend.Delete(ctx, key) //nolint:errcheck // best-effort cleanup of corrupt entry
		return nil, false, nil
	}
	return e, true, nil
}

// Put serializes e and stores it under key.
func (s *Serialized) Put(ctx context.Context, key string, e *entry.CacheEntry) error {
	data, err := s.serializer.Write(e)
	if err != nil {
		return fmt.Errorf("storage: serialize failed: %w", err)
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		return fmt.Errorf("storage: backend set failed: %w", err)
	}
	return nil
}

// Remove deletes key from the backend.
func (s *Serialized) Remove(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Update loads the current entry (if any), applies fn, and stores the
// result. Backends here offer no native CAS primitive, so this is a
// best-effort read-modify-write, not a linearizable one: concurrent Update
// calls against the same key can race. Storage.Memory is the implementation
// that gives Update its CAS guarantee; callers needing that guarantee over a
// remote backend should front it with storage.Tiered and an in-process
// Memory layer, or accept last-writer-wins here.
func (s *Serialized) Update(ctx context.Context, key string, fn Transformer) error {
	current, _, err := s.Get(ctx, key)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if next == nil {
		return s.Remove(ctx, key)
	}
	return s.Put(ctx, key, next)
}

// ErrBackendNil is returned by constructors that require a non-nil backend.
var ErrBackendNil = errors.New("storage: backend cannot be nil")
