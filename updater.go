package httpcache

import (
	"net/http"
	"time"

	"github.com/relaycache/httpcache/entry"
	"github.com/relaycache/httpcache/resource"
)

// headersNotMerged are excluded from the 304 header merge because they
// describe the representation of the 304 itself, not the cached resource.
var headersNotMerged = map[string]bool{
	headerContentEncoding: true,
	headerContentLength:   true,
}

// CacheEntryUpdater merges a 304 Not Modified response into a stored entry,
// per spec.md §4.6.
type CacheEntryUpdater struct {
	factory resource.Factory
}

// NewCacheEntryUpdater returns a CacheEntryUpdater that copies the stored
// entry's resource under a new identifier via factory.
func NewCacheEntryUpdater(factory resource.Factory) *CacheEntryUpdater {
	return &CacheEntryUpdater{factory: factory}
}

// Merge produces the new entry resulting from revalidating stale against a
// 304 response received at requestDate/responseDate, with storage key
// newResourceID used to copy the resource under a fresh identifier.
func (u *CacheEntryUpdater) Merge(stale *entry.CacheEntry, respHeaders http.Header, requestDate, responseDate time.Time, newResourceID string) (*entry.CacheEntry, error) {
	merged := mergeHeaders(stale.ResponseHeaders, respHeaders)

	var res resource.Resource
	if stale.Resource != nil {
		copied, err := u.factory.Copy(newResourceID, stale.Resource)
		if err != nil {
			return nil, err
		}
		res = copied
	}

	return &entry.CacheEntry{
		RequestDate:     requestDate,
		ResponseDate:    responseDate,
		StatusCode:      stale.StatusCode,
		ReasonPhrase:    stale.ReasonPhrase,
		ResponseHeaders: merged,
		Resource:        res,
		VariantMap:      stale.VariantMap,
		RequestMethod:   stale.RequestMethod,
		ErrorCount:      0,
	}, nil
}

// mergeHeaders implements spec.md §4.6 step 1-2: if the stored entry's Date
// is strictly newer than the 304's Date, the origin's 304 is itself stale
// and the stored headers win verbatim. Otherwise every response header
// (except Content-Encoding/Content-Length) replaces its same-named stored
// headers, and any 1xx Warning is stripped from the result.
func mergeHeaders(stored, fresh304 http.Header) http.Header {
	storedDate, storedErr := Date(stored)
	freshDate, freshErr := Date(fresh304)
	if storedErr == nil && freshErr == nil && storedDate.After(freshDate) {
		return stored.Clone()
	}

	merged := stored.Clone()
	for name, values := range fresh304 {
		canonical := http.CanonicalHeaderKey(name)
		if headersNotMerged[canonical] {
			continue
		}
		merged.Del(canonical)
		merged[canonical] = append([]string(nil), values...)
	}

	stripStaleWarnings(merged)
	return merged
}

// stripStaleWarnings removes Warning header values whose warn-code begins
// with "1", per RFC 9111 §4.3.4: 1xx warnings describe staleness properties
// of the prior response and no longer apply once it has been revalidated.
func stripStaleWarnings(headers http.Header) {
	stripWarningsByLeadingDigit(headers, '1')
}
