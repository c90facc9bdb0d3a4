package httpcache

// Header names used throughout the cache decision engine.
const (
	headerDate            = "Date"
	headerAge             = "Age"
	headerExpires         = "Expires"
	headerLastModified    = "Last-Modified"
	headerETag            = "ETag"
	headerIfNoneMatch     = "If-None-Match"
	headerIfModifiedSince = "If-Modified-Since"
	headerCacheControl    = "Cache-Control"
	headerPragma          = "Pragma"
	headerVary            = "Vary"
	headerWarning         = "Warning"
	headerLocation        = "Location"
	headerContentLocation = "Content-Location"
	headerContentEncoding = "Content-Encoding"
	headerContentLength   = "Content-Length"
	headerTransferEncoding = "Transfer-Encoding"
	headerAuthorization   = "Authorization"
)

// Response headers X-Cache-style exposed on cached responses, grounded on the
// teacher's diagnostic header set.
const (
	XFromCache   = "X-From-Cache"
	XRevalidated = "X-Revalidated"
	XStale       = "X-Stale"
	XFreshness   = "X-Freshness"
)

// Cache-Control directive names.
const (
	cacheControlNoStore              = "no-store"
	cacheControlNoCache              = "no-cache"
	cacheControlPrivate              = "private"
	cacheControlPublic               = "public"
	cacheControlMustRevalidate       = "must-revalidate"
	cacheControlProxyRevalidate      = "proxy-revalidate"
	cacheControlMustUnderstand       = "must-understand"
	cacheControlMaxAge               = "max-age"
	cacheControlSMaxAge              = "s-maxage"
	cacheControlMinFresh             = "min-fresh"
	cacheControlMaxStale             = "max-stale"
	cacheControlOnlyIfCached         = "only-if-cached"
	cacheControlStaleWhileRevalidate = "stale-while-revalidate"
	cacheControlStaleIfError        = "stale-if-error"
)

const pragmaNoCache = "no-cache"

// Suitability outcomes returned by the SuitabilityChecker.
type suitability int

const (
	// cannotUse means the entry may not satisfy this request at all; treat as miss.
	cannotUse suitability = iota
	// freshEnough means the entry can be returned as-is.
	freshEnough
	// mustRevalidate means the entry exists but requires conditional validation.
	mustRevalidate
)

func (s suitability) String() string {
	switch s {
	case freshEnough:
		return "fresh_enough"
	case mustRevalidate:
		return "revalidate"
	default:
		return "cannot_use"
	}
}

const logConflictingDirectives = "conflicting Cache-Control directives detected"

// Warning codes per RFC 7234 Section 5.5.
const (
	warningResponseIsStale     = "110 - \"Response is Stale\""
	warningRevalidationFailed  = "111 - \"Revalidation Failed\""
)

// understoodStatusCodes lists status codes this cache fully understands the
// caching semantics of, used by the must-understand directive (RFC 9111
// Section 5.2.2.3).
var understoodStatusCodes = map[int]bool{
	200: true, 203: true, 204: true, 206: true,
	300: true, 301: true, 302: true, 303: true, 304: true, 307: true, 308: true,
	404: true, 405: true, 410: true, 414: true, 501: true,
}

// defaultCacheableStatus are cacheable by default without extra headers.
var defaultCacheableStatus = map[int]bool{
	200: true, 203: true, 300: true, 301: true, 410: true,
}

// conditionallyCacheableStatus require explicit permission via config flags.
var conditionallyCacheableStatus = map[int]bool{
	206: true, 303: true, 307: true,
}

// heuristicEligibleStatus are the statuses for which freshness lifetime may
// be computed heuristically when no explicit freshness information is given,
// per spec.md §4.2's extra-status allow-list.
var heuristicEligibleStatus = map[int]bool{
	200: true, 203: true, 300: true, 301: true, 410: true,
	302: true, 404: true, 405: true, 414: true, 501: true,
}

// unsafeMethods are methods whose responses trigger cache invalidation.
var unsafeMethods = map[string]bool{
	"PUT": true, "POST": true, "DELETE": true, "PATCH": true,
}
