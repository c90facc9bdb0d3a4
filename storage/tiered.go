package storage

import (
	"context"

	"github.com/relaycache/httpcache/entry"
)

// Tiered cascades through an ordered list of Storage backends, fastest
// first, promoting entries found in a slower tier up to every faster tier.
// It is the entry-level counterpart of wrapper/multicache.MultiCache,
// adapted from operating on raw cache.Cache bytes to operating directly on
// CacheEntry values so a fast in-process Memory store can front a slower
// Serialized backend without a serialize round trip on every promotion.
type Tiered struct {
	tiers []Storage
}

// NewTiered returns a Tiered store over tiers, ordered fastest to slowest.
func NewTiered(tiers ...Storage) *Tiered {
	return &Tiered{tiers: tiers}
}

// Get searches each tier in order and promotes a found entry to all faster
// tiers.
func (t *Tiered) Get(ctx context.Context, key string) (*entry.CacheEntry, bool, error) {
	for i, tier := range t.tiers {
		e, ok, err := tier.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			for j := 0; j < i; j++ {
				_ = t.tiers[j].Put(ctx, key, e) //nolint:errcheck // promotion is best-effort
			}
			return e, true, nil
		}
	}
	return nil, false, nil
}

// Put stores e in every tier.
func (t *Tiered) Put(ctx context.Context, key string, e *entry.CacheEntry) error {
	for _, tier := range t.tiers {
		if err := tier.Put(ctx, key, e); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes key from every tier.
func (t *Tiered) Remove(ctx context.Context, key string) error {
	for _, tier := range t.tiers {
		if err := tier.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Update applies fn against the slowest tier's view of key (the tier most
// likely to be the system of record) and propagates the result to every
// tier.
func (t *Tiered) Update(ctx context.Context, key string, fn Transformer) error {
	if len(t.tiers) == 0 {
		return nil
	}
	last := t.tiers[len(t.tiers)-1]
	current, _, err := last.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return t.Remove(ctx, key)
	}
	return t.Put(ctx, key, next)
}
