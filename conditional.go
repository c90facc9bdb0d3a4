package httpcache

import (
	"net/http"
	"strings"

	"github.com/relaycache/httpcache/entry"
)

// ConditionalRequestBuilder derives a conditional revalidation request from
// a request and the stored entry that is too stale to serve as-is.
type ConditionalRequestBuilder struct{}

// NewConditionalRequestBuilder returns a ConditionalRequestBuilder.
func NewConditionalRequestBuilder() *ConditionalRequestBuilder {
	return &ConditionalRequestBuilder{}
}

// Build clones req and adds If-None-Match / If-Modified-Since validators
// derived from e. For a variant root, all variants' ETags are joined into a
// single If-None-Match list so the origin can match any of them.
func (ConditionalRequestBuilder) Build(req *http.Request, e *entry.CacheEntry, variants []*entry.CacheEntry) *http.Request {
	clone := req.Clone(req.Context())

	if len(variants) > 0 {
		etags := make([]string, 0, len(variants))
		for _, v := range variants {
			if tag := v.ETag(); tag != "" {
				etags = append(etags, tag)
			}
		}
		if len(etags) > 0 {
			clone.Header.Set(headerIfNoneMatch, strings.Join(etags, ", "))
			return clone
		}
	}

	if tag := e.ETag(); tag != "" {
		clone.Header.Set(headerIfNoneMatch, tag)
		return clone
	}
	if lm := e.LastModified(); lm != "" {
		clone.Header.Set(headerIfModifiedSince, lm)
	}

	return clone
}
