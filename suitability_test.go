package httpcache

import (
	"net/http"
	"testing"
	"time"

	"github.com/relaycache/httpcache/entry"
	"github.com/stretchr/testify/assert"
)

func freshEntryAt(t *testing.T, now time.Time) *entry.CacheEntry {
	withClock(t, now)
	return &entry.CacheEntry{
		RequestMethod: http.MethodGet,
		RequestDate:   now,
		ResponseDate:  now,
		ResponseHeaders: http.Header{
			"Date":          []string{rfc1123(now)},
			"Cache-Control": []string{"max-age=3600"},
			"ETag":          []string{`"v1"`},
		},
	}
}

func TestSuitabilityChecker_FreshEnough(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(60*time.Second))

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, freshEnough, s.Check(newReq(http.MethodGet, "/a"), e))
}

func TestSuitabilityChecker_StaleRequiresRevalidate(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(7200*time.Second))

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, mustRevalidate, s.Check(newReq(http.MethodGet, "/a"), e))
}

func TestSuitabilityChecker_MethodMismatchCannotUse(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(10*time.Second))

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, cannotUse, s.Check(newReq(http.MethodHead, "/a"), e))
}

func TestSuitabilityChecker_VariantRootCannotUse(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(t, t0)
	e := &entry.CacheEntry{VariantMap: map[string]string{"x": "y"}}

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, cannotUse, s.Check(newReq(http.MethodGet, "/a"), e))
}

func TestSuitabilityChecker_RequestNoCacheCannotUse(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(10*time.Second))

	req := newReq(http.MethodGet, "/a")
	req.Header.Set("Cache-Control", "no-cache")

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, cannotUse, s.Check(req, e))
}

func TestSuitabilityChecker_MinFreshExceedsRemainingFreshness(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(3500*time.Second)) // 100s of freshness left

	req := newReq(http.MethodGet, "/a")
	req.Header.Set("Cache-Control", "min-fresh=600")

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, cannotUse, s.Check(req, e))
}

func TestSuitabilityChecker_RequestMaxAgeLessThanCurrentAge(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(60*time.Second))

	req := newReq(http.MethodGet, "/a")
	req.Header.Set("Cache-Control", "max-age=30")

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, cannotUse, s.Check(req, e))
}

func TestSuitabilityChecker_StaleMustRevalidateCannotUse(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(t, t0)
	e := &entry.CacheEntry{
		RequestMethod: http.MethodGet,
		RequestDate:   t0,
		ResponseDate:  t0,
		ResponseHeaders: http.Header{
			"Date":          []string{rfc1123(t0)},
			"Cache-Control": []string{"max-age=60, must-revalidate"},
			"ETag":          []string{`"v1"`},
		},
	}
	withClock(t, t0.Add(120*time.Second))

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, cannotUse, s.Check(newReq(http.MethodGet, "/a"), e))
}

func TestSuitabilityChecker_StaleNoValidatorRequiresMaxStale(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(t, t0)
	e := &entry.CacheEntry{
		RequestMethod: http.MethodGet,
		RequestDate:   t0,
		ResponseDate:  t0,
		ResponseHeaders: http.Header{
			"Date":          []string{rfc1123(t0)},
			"Cache-Control": []string{"max-age=60"},
		},
	}
	withClock(t, t0.Add(120*time.Second))

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, cannotUse, s.Check(newReq(http.MethodGet, "/a"), e))
}

func TestSuitabilityChecker_MaxStaleWithinBoundIsFreshEnough(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(3660*time.Second)) // 60s stale

	req := newReq(http.MethodGet, "/a")
	req.Header.Set("Cache-Control", "max-stale=120")

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, freshEnough, s.Check(req, e))
}

func TestSuitabilityChecker_MaxStaleBareAcceptsAnyStaleness(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := freshEntryAt(t, t0)
	withClock(t, t0.Add(1e6*time.Second))

	req := newReq(http.MethodGet, "/a")
	req.Header.Set("Cache-Control", "max-stale")

	fr := NewFreshnessCalculator()
	s := &SuitabilityChecker{Shared: true, Freshness: fr}
	assert.Equal(t, freshEnough, s.Check(req, e))
}
