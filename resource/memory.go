package resource

import (
	"bytes"
	"io"
)

// MemoryResource holds its bytes on the heap. Dispose just drops the
// reference; the garbage collector reclaims it once every open reader has
// closed.
type MemoryResource struct {
	data    []byte
	tracker *refTracker
}

func newMemoryResource(data []byte) *MemoryResource {
	m := &MemoryResource{data: data}
	m.tracker = newRefTracker(func() error {
		m.data = nil
		return nil
	})
	return m
}

// Open returns a reader over the resource's bytes; see Resource.Open.
func (m *MemoryResource) Open() (io.ReadCloser, error) {
	stream := io.NopCloser(bytes.NewReader(m.data))
	return NewOwnedReader(stream, m.tracker), nil
}

// Length returns the number of bytes held.
func (m *MemoryResource) Length() int64 {
	return int64(len(m.data))
}

// Dispose marks the backing slice for release. Idempotent; deferred until
// every open reader has closed.
func (m *MemoryResource) Dispose() error {
	return m.tracker.dispose()
}

// MemoryFactory produces and copies MemoryResource instances.
type MemoryFactory struct{}

// NewMemoryFactory returns a Factory backed by in-process memory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{}
}

// Generate reads at most maxBytes from r and holds the result in memory.
func (f *MemoryFactory) Generate(_ string, r io.Reader, maxBytes int64) (Resource, error) {
	data, err := readBounded(r, maxBytes)
	if err != nil {
		return nil, err
	}
	return newMemoryResource(data), nil
}

// Copy duplicates existing's bytes into a new, independently owned resource.
func (f *MemoryFactory) Copy(_ string, existing Resource) (Resource, error) {
	data, err := ReadAll(existing)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return newMemoryResource(cp), nil
}
