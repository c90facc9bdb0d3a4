// Package entry defines CacheEntry, the immutable record at the center of
// the cache: request/response timestamps, status line, headers, a resource
// handle, and the Vary-derived variant index. It has no dependency on the
// root httpcache package so that storage and serializer backends can depend
// on it without creating an import cycle back to the executor.
package entry

import (
	"net/http"
	"time"

	"github.com/relaycache/httpcache/resource"
)

// CacheEntry is an immutable record of a cached HTTP exchange. It is never
// mutated in place; CacheEntryUpdater and the executor produce new entries
// via copy-on-write and Storage replaces them atomically.
type CacheEntry struct {
	RequestDate  time.Time
	ResponseDate time.Time

	StatusCode   int
	ReasonPhrase string

	// ResponseHeaders may contain duplicate keys; http.Header already
	// supports multiple values per canonical key.
	ResponseHeaders http.Header

	// Resource is nil for a root entry that only carries a VariantMap.
	Resource resource.Resource

	// VariantMap maps a variant key (derived from Vary-selected request
	// header values) to the storage key of that variant's own entry. Empty
	// when the response had no Vary header.
	VariantMap map[string]string

	RequestMethod string

	// ErrorCount is the number of consecutive revalidation failures,
	// consulted by the async back-off scheduler.
	ErrorCount int
}

// IsVariantRoot reports whether this entry indexes variants rather than
// holding a body itself.
func (e *CacheEntry) IsVariantRoot() bool {
	return len(e.VariantMap) > 0
}

// Clone returns a shallow copy of e with an independent ResponseHeaders map
// and VariantMap, suitable as the starting point for a copy-on-write update.
// The Resource handle is carried over unchanged; callers that replace the
// body must explicitly overwrite Resource on the returned value.
func (e *CacheEntry) Clone() *CacheEntry {
	headers := make(http.Header, len(e.ResponseHeaders))
	for k, v := range e.ResponseHeaders {
		vv := make([]string, len(v))
		copy(vv, v)
		headers[k] = vv
	}
	variants := make(map[string]string, len(e.VariantMap))
	for k, v := range e.VariantMap {
		variants[k] = v
	}
	return &CacheEntry{
		RequestDate:     e.RequestDate,
		ResponseDate:    e.ResponseDate,
		StatusCode:      e.StatusCode,
		ReasonPhrase:    e.ReasonPhrase,
		ResponseHeaders: headers,
		Resource:        e.Resource,
		VariantMap:      variants,
		RequestMethod:   e.RequestMethod,
		ErrorCount:      e.ErrorCount,
	}
}

// ETag returns the entry's validator ETag header value, if any.
func (e *CacheEntry) ETag() string {
	return e.ResponseHeaders.Get("ETag")
}

// LastModified returns the entry's Last-Modified header value, if any.
func (e *CacheEntry) LastModified() string {
	return e.ResponseHeaders.Get("Last-Modified")
}

// HasValidator reports whether the entry carries an ETag or Last-Modified,
// either of which permits conditional revalidation.
func (e *CacheEntry) HasValidator() bool {
	return e.ETag() != "" || e.LastModified() != ""
}
