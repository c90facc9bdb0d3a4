package httpcache

import "net/http"

// ResponseCachingPolicy decides whether a response may be stored at all,
// independent of whether storing is currently configured to happen (that is
// the executor's job once this returns true).
type ResponseCachingPolicy struct {
	// Shared marks this cache instance as shared (serving multiple users),
	// which activates the private/Authorization/s-maxage rules of RFC 9111
	// §3.5. Default true, matching spec.md §6.
	Shared bool
	// Allow303/Allow307/Allow206 gate the statuses that RFC 9111 permits
	// caching only when explicitly configured to do so.
	Allow303 bool
	Allow307 bool
	Allow206 bool
	// AllowHEAD permits caching HEAD responses, an extension beyond
	// spec.md's baseline GET-only model that spec.md explicitly allows
	// "if configured" (see SPEC_FULL.md §6).
	AllowHEAD bool
}

// NewResponseCachingPolicy returns a ResponseCachingPolicy with spec.md's
// default shared-cache configuration.
func NewResponseCachingPolicy() *ResponseCachingPolicy {
	return &ResponseCachingPolicy{Shared: true}
}

// Allow reports whether resp, received for req, may be stored.
func (p *ResponseCachingPolicy) Allow(req *http.Request, resp *http.Response) bool {
	if !p.methodCacheable(req.Method) {
		return false
	}
	if !p.statusCacheable(resp) {
		return false
	}
	if resp.Header.Get(headerVary) == "*" {
		return false
	}

	log := GetLogger()
	reqCC := parseCacheControl(req.Header, log)
	respCC := parseCacheControl(resp.Header, log)

	return canStore(req, reqCC, respCC, p.Shared, resp.StatusCode, log)
}

func (p *ResponseCachingPolicy) methodCacheable(method string) bool {
	if method == http.MethodGet {
		return true
	}
	return method == http.MethodHead && p.AllowHEAD
}

func (p *ResponseCachingPolicy) statusCacheable(resp *http.Response) bool {
	status := resp.StatusCode

	if defaultCacheableStatus[status] {
		return true
	}

	if conditionallyCacheableStatus[status] {
		switch status {
		case http.StatusSeeOther:
			return p.Allow303
		case http.StatusTemporaryRedirect:
			return p.Allow307
		case http.StatusPartialContent:
			return p.Allow206
		}
	}

	if heuristicEligibleStatus[status] && hasExplicitFreshness(resp.Header) {
		return true
	}

	return false
}

// hasExplicitFreshness reports whether resp carries Expires or a max-age /
// s-maxage Cache-Control directive.
func hasExplicitFreshness(headers http.Header) bool {
	if headers.Get(headerExpires) != "" {
		return true
	}
	cc := parseCacheControl(headers, GetLogger())
	if _, ok := cc[cacheControlMaxAge]; ok {
		return true
	}
	if _, ok := cc[cacheControlSMaxAge]; ok {
		return true
	}
	return false
}
