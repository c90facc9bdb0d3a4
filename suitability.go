package httpcache

import (
	"net/http"
	"time"

	"github.com/relaycache/httpcache/entry"
)

// SuitabilityChecker decides, for a given request and a candidate stored
// entry, whether the entry can satisfy the request outright, must first be
// conditionally revalidated, or cannot be used at all.
type SuitabilityChecker struct {
	Shared     bool
	Freshness  *FreshnessCalculator
}

// NewSuitabilityChecker returns a SuitabilityChecker sharing fr for its
// freshness computations.
func NewSuitabilityChecker(fr *FreshnessCalculator) *SuitabilityChecker {
	return &SuitabilityChecker{Shared: fr.Shared, Freshness: fr}
}

// Check implements spec.md §4.4.
func (s *SuitabilityChecker) Check(req *http.Request, e *entry.CacheEntry) suitability {
	if e.IsVariantRoot() {
		return cannotUse
	}
	if e.RequestMethod != "" && e.RequestMethod != req.Method {
		return cannotUse
	}

	log := GetLogger()
	reqCC := parseCacheControl(req.Header, log)
	respCC := parseCacheControl(e.ResponseHeaders, log)

	if _, ok := reqCC[cacheControlNoCache]; ok {
		return cannotUse
	}
	if req.Header.Get(headerPragma) == pragmaNoCache {
		if _, hasCC := req.Header[headerCacheControl]; !hasCC {
			return cannotUse
		}
	}

	currentAge := s.Freshness.CurrentAge(e)
	lifetime := s.Freshness.FreshnessLifetime(e)

	if minFresh, ok := reqCC[cacheControlMinFresh]; ok {
		if d, err := time.ParseDuration(minFresh + "s"); err == nil {
			if lifetime-currentAge < d {
				return cannotUse
			}
		}
	}

	if maxAge, ok := reqCC[cacheControlMaxAge]; ok {
		if d, err := time.ParseDuration(maxAge + "s"); err == nil {
			if currentAge > d {
				return cannotUse
			}
		}
	}

	isStale := currentAge >= lifetime

	if isStale {
		if _, ok := respCC[cacheControlNoCache]; ok {
			return cannotUse
		}
		if _, ok := respCC[cacheControlMustRevalidate]; ok {
			return cannotUse
		}
		if s.Shared {
			if _, ok := respCC[cacheControlProxyRevalidate]; ok {
				return cannotUse
			}
		}
		if !e.HasValidator() {
			if _, ok := reqCC[cacheControlMaxStale]; !ok {
				return cannotUse
			}
		}
	}

	if !isStale {
		return freshEnough
	}

	if maxStale, ok := reqCC[cacheControlMaxStale]; ok {
		staleness := currentAge - lifetime
		if maxStale == "" {
			return freshEnough
		}
		if d, err := time.ParseDuration(maxStale + "s"); err == nil && staleness <= d {
			return freshEnough
		}
	}

	return mustRevalidate
}
