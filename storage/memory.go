package storage

import (
	"container/list"
	"context"
	"sync"

	"github.com/relaycache/httpcache/entry"
)

// Memory is a bounded, in-process Storage backed by a capacity-limited LRU
// list. When a put or update would exceed MaxEntries, the least-recently-used
// key is evicted and its resource disposed, grounded on lox-httpcache's
// CappedLRUList (storage/lru.go): a doubly linked list reordered on every
// access, with eviction taking the list's tail rather than scanning for an
// oldest creation timestamp.
type Memory struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element
}

type memoryItem struct {
	key   string
	entry *entry.CacheEntry
}

// NewMemory returns a Memory store bounded at maxEntries. maxEntries <= 0
// means unbounded.
func NewMemory(maxEntries int) *Memory {
	return &Memory{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns the entry for key, promoting it to most-recently-used.
func (m *Memory) Get(_ context.Context, key string) (*entry.CacheEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	m.ll.MoveToFront(el)
	return el.Value.(*memoryItem).entry, true, nil
}

// Put stores e under key, disposing any resource it replaces and evicting
// the least-recently-used entry if capacity is exceeded.
func (m *Memory) Put(_ context.Context, key string, e *entry.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putLocked(key, e)
}

func (m *Memory) putLocked(key string, e *entry.CacheEntry) error {
	if el, ok := m.items[key]; ok {
		old := el.Value.(*memoryItem).entry
		el.Value.(*memoryItem).entry = e
		m.ll.MoveToFront(el)
		disposeSuperseded(old, e)
		return nil
	}

	el := m.ll.PushFront(&memoryItem{key: key, entry: e})
	m.items[key] = el

	if m.maxEntries > 0 && m.ll.Len() > m.maxEntries {
		m.evictOldest()
	}
	return nil
}

func (m *Memory) evictOldest() {
	el := m.ll.Back()
	if el == nil {
		return
	}
	item := el.Value.(*memoryItem)
	m.ll.Remove(el)
	delete(m.items, item.key)
	if item.entry != nil && item.entry.Resource != nil {
		_ = item.entry.Resource.Dispose() //nolint:errcheck // best-effort eviction cleanup
	}
}

// Remove deletes key, disposing its resource.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil
	}
	item := el.Value.(*memoryItem)
	m.ll.Remove(el)
	delete(m.items, key)
	if item.entry != nil && item.entry.Resource != nil {
		_ = item.entry.Resource.Dispose() //nolint:errcheck
	}
	return nil
}

// Update applies fn to the current entry for key (nil if absent) and stores
// the result, holding the store's lock for the duration so the
// read-modify-write is linearizable with respect to other Memory operations
// on the same key.
func (m *Memory) Update(_ context.Context, key string, fn Transformer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current *entry.CacheEntry
	if el, ok := m.items[key]; ok {
		current = el.Value.(*memoryItem).entry
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if next == nil {
		if el, ok := m.items[key]; ok {
			item := el.Value.(*memoryItem)
			m.ll.Remove(el)
			delete(m.items, key)
			if item.entry != nil && item.entry.Resource != nil {
				_ = item.entry.Resource.Dispose() //nolint:errcheck
			}
		}
		return nil
	}

	return m.putLocked(key, next)
}

// disposeSuperseded disposes old's resource when it is being replaced by a
// distinct entry, so a replaced entry's body is released exactly once even
// though callers may still hold an ownedReader stream over it.
func disposeSuperseded(old, next *entry.CacheEntry) {
	if old == nil || old == next || old.Resource == nil {
		return
	}
	if next != nil && old.Resource == next.Resource {
		return
	}
	_ = old.Resource.Dispose() //nolint:errcheck // disposal is best-effort at replacement time
}
