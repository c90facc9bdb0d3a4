package httpcache

import "net/http"

// RequestPolicy decides whether a request is even eligible to be served
// from cache at all. A request that fails this gate bypasses the cache
// entirely: the executor sends it straight to the backend and never
// consults or mutates storage for it.
type RequestPolicy struct {
	// AllowHEAD mirrors ResponseCachingPolicy.AllowHEAD: a HEAD request is
	// only cache-eligible when HEAD responses are also configured to be
	// stored, otherwise every cached HEAD entry would be write-only.
	AllowHEAD bool
}

// NewRequestPolicy returns a RequestPolicy.
func NewRequestPolicy(allowHEAD bool) *RequestPolicy {
	return &RequestPolicy{AllowHEAD: allowHEAD}
}

// Allow reports whether req may be served from the cache. All of the
// following must hold: HTTP/1.1, method GET (or HEAD when AllowHEAD is
// set), no Pragma header, and no Cache-Control no-store or no-cache
// directive on the request.
func (p RequestPolicy) Allow(req *http.Request) bool {
	if req.ProtoMajor != 1 || req.ProtoMinor != 1 {
		return false
	}
	if req.Method != http.MethodGet && !(req.Method == http.MethodHead && p.AllowHEAD) {
		return false
	}
	if req.Header.Get(headerPragma) != "" {
		return false
	}

	cc := parseCacheControl(req.Header, GetLogger())
	if _, ok := cc[cacheControlNoStore]; ok {
		return false
	}
	if _, ok := cc[cacheControlNoCache]; ok {
		return false
	}

	return true
}
