// Package httpcache provides a http.RoundTripper implementation that works as a
// mostly RFC 9111 compliant cache for HTTP responses.
package httpcache

import (
	"net/http"
	"time"

	"github.com/relaycache/httpcache/entry"
)

// timer is an interface for time-related operations, allowing for testing.
type timer interface {
	now() time.Time
}

type realClock struct{}

func (c *realClock) now() time.Time { return time.Now() }

var clock timer = &realClock{}

// FreshnessCalculator computes the RFC 9111 §4.2 current age and freshness
// lifetime of a stored CacheEntry.
type FreshnessCalculator struct {
	// Shared enables the s-maxage freshness-lifetime rule, restricted to
	// shared caches.
	Shared bool

	// HeuristicEnabled gates the RFC 9111 §4.2.2 Last-Modified heuristic;
	// when false, responses with no explicit freshness information are
	// treated as already stale (freshness lifetime 0).
	HeuristicEnabled bool
	// HeuristicCoefficient is the fraction of (Date - Last-Modified)
	// assigned as heuristic freshness lifetime. Default 0.1 per spec.md §6.
	HeuristicCoefficient float64
	// HeuristicDefaultLifetime is used when heuristic caching is enabled
	// but the entry carries no Last-Modified to derive a lifetime from.
	HeuristicDefaultLifetime time.Duration
}

// NewFreshnessCalculator returns a FreshnessCalculator for a shared cache
// with spec.md §6's default heuristic settings.
func NewFreshnessCalculator() *FreshnessCalculator {
	return &FreshnessCalculator{Shared: true, HeuristicEnabled: true, HeuristicCoefficient: 0.1}
}

// CurrentAge implements RFC 9111 §4.2.3:
//
//	apparent_age          = max(0, response_date - Date_header)
//	corrected_received_age = max(apparent_age, Age_header)
//	response_delay        = response_date - request_date
//	corrected_initial_age  = corrected_received_age + response_delay
//	resident_time         = now - response_date
//	current_age           = corrected_initial_age + resident_time
func (f *FreshnessCalculator) CurrentAge(e *entry.CacheEntry) time.Duration {
	dateValue, err := Date(e.ResponseHeaders)
	if err != nil {
		dateValue = e.ResponseDate
	}

	apparentAge := time.Duration(0)
	if e.ResponseDate.After(dateValue) {
		apparentAge = e.ResponseDate.Sub(dateValue)
	}

	correctedReceivedAge := apparentAge
	if ageValue, valid := parseAgeHeader(e.ResponseHeaders, GetLogger()); valid && ageValue > correctedReceivedAge {
		correctedReceivedAge = ageValue
	}

	responseDelay := time.Duration(0)
	if !e.RequestDate.IsZero() && e.ResponseDate.After(e.RequestDate) {
		responseDelay = e.ResponseDate.Sub(e.RequestDate)
	}

	correctedInitialAge := correctedReceivedAge + responseDelay
	residentTime := clock.now().Sub(e.ResponseDate)
	if residentTime < 0 {
		residentTime = 0
	}

	return correctedInitialAge + residentTime
}

// FreshnessLifetime selects the response's freshness lifetime per spec.md
// §4.3's ordering: shared s-maxage, then max-age, then Expires-Date, then a
// heuristic lifetime for statuses that permit one.
func (f *FreshnessCalculator) FreshnessLifetime(e *entry.CacheEntry) time.Duration {
	log := GetLogger()
	cc := parseCacheControl(e.ResponseHeaders, log)

	if f.Shared {
		if v, ok := cc[cacheControlSMaxAge]; ok && v != "" {
			if d, err := time.ParseDuration(v + "s"); err == nil {
				return d
			}
		}
	}

	if v, ok := cc[cacheControlMaxAge]; ok && v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}

	dateValue, dateErr := Date(e.ResponseHeaders)
	if expiresHeader := e.ResponseHeaders.Get(headerExpires); expiresHeader != "" && dateErr == nil {
		if expires, err := time.Parse(time.RFC1123, expiresHeader); err == nil {
			if lifetime := expires.Sub(dateValue); lifetime > 0 {
				return lifetime
			}
			return 0
		}
	}

	if f.HeuristicEnabled && heuristicEligibleStatus[e.StatusCode] {
		return f.heuristicLifetime(e, dateValue, dateErr)
	}

	return 0
}

// heuristicLifetime applies the Last-Modified heuristic of RFC 9111 §4.2.2
// when neither an explicit max-age/s-maxage nor Expires is present, falling
// back to HeuristicDefaultLifetime when there is no Last-Modified to derive
// a lifetime from.
func (f *FreshnessCalculator) heuristicLifetime(e *entry.CacheEntry, dateValue time.Time, dateErr error) time.Duration {
	lastModified := e.LastModified()
	if lastModified == "" || dateErr != nil {
		return f.HeuristicDefaultLifetime
	}
	lm, err := time.Parse(time.RFC1123, lastModified)
	if err != nil || !dateValue.After(lm) {
		return f.HeuristicDefaultLifetime
	}
	coefficient := f.HeuristicCoefficient
	if coefficient == 0 {
		coefficient = 0.1
	}
	return time.Duration(float64(dateValue.Sub(lm)) * coefficient)
}

// IsFresh reports whether e is still within its freshness lifetime.
func (f *FreshnessCalculator) IsFresh(e *entry.CacheEntry) bool {
	return f.FreshnessLifetime(e) > f.CurrentAge(e)
}

// Staleness returns how far past its freshness lifetime e is, clamped to
// zero for fresh entries.
func (f *FreshnessCalculator) Staleness(e *entry.CacheEntry) time.Duration {
	staleness := f.CurrentAge(e) - f.FreshnessLifetime(e)
	if staleness < 0 {
		return 0
	}
	return staleness
}

// parseStaleIfError parses the stale-if-error directive from cache control,
// per RFC 5861.
func parseStaleIfError(cc cacheControl) (lifetime time.Duration, acceptAny bool, found bool) {
	staleMaxAge, ok := cc[cacheControlStaleIfError]
	if !ok {
		return 0, false, false
	}
	if staleMaxAge == "" {
		return 0, true, true
	}
	lifetime, err := time.ParseDuration(staleMaxAge + "s")
	if err != nil {
		return 0, false, true
	}
	return lifetime, false, true
}

// CanStaleOnError reports whether e may be served in place of an upstream
// error response, per the stale-if-error extension (RFC 5861).
func (f *FreshnessCalculator) CanStaleOnError(e *entry.CacheEntry, reqHeaders http.Header) bool {
	log := GetLogger()
	respCC := parseCacheControl(e.ResponseHeaders, log)
	reqCC := parseCacheControl(reqHeaders, log)

	lifetime := time.Duration(-1)

	if respLifetime, acceptAny, found := parseStaleIfError(respCC); found {
		if acceptAny {
			return true
		}
		lifetime = respLifetime
	}

	if reqLifetime, acceptAny, found := parseStaleIfError(reqCC); found {
		if acceptAny {
			return true
		}
		lifetime = reqLifetime
	}

	if lifetime < 0 {
		return false
	}
	return f.Staleness(e) < lifetime
}
