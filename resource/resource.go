// Package resource implements the owned byte-blob backing a CacheEntry's
// body: an opaque Resource created and disposed through a ResourceFactory,
// either held in memory or backed by a file on disk.
package resource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// ErrSizeExceeded is returned by a ResourceFactory when the producer stream
// exceeds the maximum allowed size. The caller's response is still returned
// to its consumer; only storage is skipped.
var ErrSizeExceeded = errors.New("resource: stream exceeds maximum size")

// Resource is an owned byte sequence. Disposal is idempotent and exclusive:
// only the first caller to Dispose actually releases the backing storage.
type Resource interface {
	// Open returns a stream over the resource's bytes. Each call yields an
	// independent reader; closing it disposes the resource only if Dispose
	// has already been called and no other reader is still open.
	Open() (io.ReadCloser, error)
	// Length returns the resource's byte length.
	Length() int64
	// Dispose releases the backing storage. Safe to call more than once;
	// only the first call has an effect.
	Dispose() error
}

// Factory creates a Resource from a bounded producer stream and copies an
// existing Resource under a new identifier.
type Factory interface {
	// Generate reads at most maxBytes from r under identifier id. If r
	// produces more than maxBytes, the partial write is discarded and
	// ErrSizeExceeded is returned.
	Generate(id string, r io.Reader, maxBytes int64) (Resource, error)
	// Copy duplicates existing under a new identifier, giving the copy
	// independent lifetime from the original.
	Copy(newID string, existing Resource) (Resource, error)
}

// refTracker implements the "CombinedEntity" pattern of spec.md §9: a
// Resource's storage may be superseded or evicted while a caller still holds
// an open stream over it. Dispose marks the backing storage for release,
// but the actual release (dropping the byte slice, deleting the file) only
// runs once every reader opened via Open has closed its stream — whichever
// happens last, Dispose or the final Close, triggers it.
type refTracker struct {
	refs      int32 // atomic, count of open-but-not-yet-closed readers
	requested atomic.Bool
	released  atomic.Bool
	release   func() error
}

func newRefTracker(release func() error) *refTracker {
	return &refTracker{release: release}
}

// acquire registers one more active reader; call once per Open.
func (t *refTracker) acquire() {
	atomic.AddInt32(&t.refs, 1)
}

// closeReader releases one reader's hold and performs the deferred release
// if Dispose already ran and this was the last active reader.
func (t *refTracker) closeReader() error {
	if atomic.AddInt32(&t.refs, -1) == 0 && t.requested.Load() {
		return t.tryRelease()
	}
	return nil
}

// dispose marks the resource for release. With no readers currently open
// the release runs immediately; otherwise it is deferred to the last
// reader's Close.
func (t *refTracker) dispose() error {
	if !t.requested.CompareAndSwap(false, true) {
		return nil
	}
	if atomic.LoadInt32(&t.refs) == 0 {
		return t.tryRelease()
	}
	return nil
}

func (t *refTracker) tryRelease() error {
	if t.released.CompareAndSwap(false, true) {
		return t.release()
	}
	return nil
}

// ownedReader wraps a Resource's stream so that Close only ever decrements
// the reader refcount; it never disposes storage that is still live. The
// underlying bytes are only actually released once Dispose has been called
// (by storage's replace/evict/remove path, never by an ordinary reader) and
// every outstanding reader has closed.
type ownedReader struct {
	io.ReadCloser
	tracker *refTracker
}

// NewOwnedReader wraps stream with refcounted disposal semantics for a
// Resource whose deferred release is tracker. tracker is shared by every
// reader derived from the same resource and by the resource's own Dispose,
// so release runs exactly once, no earlier than the last Close.
func NewOwnedReader(stream io.ReadCloser, tracker *refTracker) io.ReadCloser {
	tracker.acquire()
	return &ownedReader{ReadCloser: stream, tracker: tracker}
}

func (o *ownedReader) Close() error {
	err := o.ReadCloser.Close()
	if disposeErr := o.tracker.closeReader(); disposeErr != nil && err == nil {
		err = disposeErr
	}
	return err
}

// ReadAll reads a Resource's full contents, a convenience for callers (such
// as the serializer or a Factory's Copy) that need the whole body.
func ReadAll(r Resource) ([]byte, error) {
	stream, err := r.Open()
	if err != nil {
		return nil, fmt.Errorf("resource: open failed: %w", err)
	}
	defer stream.Close() //nolint:errcheck // best effort cleanup

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("resource: read failed: %w", err)
	}
	return data, nil
}

// boundedReader caps the number of bytes read from r at limit+1, so the
// caller can detect an oversized stream by comparing bytes read to limit.
type boundedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.read > b.limit {
		return 0, ErrSizeExceeded
	}
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		return n, ErrSizeExceeded
	}
	return n, err
}

func readBounded(r io.Reader, maxBytes int64) ([]byte, error) {
	br := &boundedReader{r: r, limit: maxBytes}
	var buf bytes.Buffer
	_, err := io.Copy(&buf, br)
	if err != nil {
		if errors.Is(err, ErrSizeExceeded) {
			return nil, ErrSizeExceeded
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
