package httpcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/relaycache/httpcache/async"
	"github.com/relaycache/httpcache/entry"
	"github.com/relaycache/httpcache/failure"
	"github.com/relaycache/httpcache/resource"
	"github.com/relaycache/httpcache/storage"
)

// CachingExecutor orchestrates the whole request lifecycle described by
// spec.md §4.9: policy gating, lookup, suitability, conditional
// revalidation (synchronous or scheduled), and response reconstruction.
type CachingExecutor struct {
	backend  http.RoundTripper
	store    storage.Storage
	factory  resource.Factory
	config   Config
	resilience *ResilienceConfig

	requestPolicy  *RequestPolicy
	responsePolicy *ResponseCachingPolicy
	freshness      *FreshnessCalculator
	suitability    *SuitabilityChecker
	conditional    *ConditionalRequestBuilder
	updater        *CacheEntryUpdater
	invalidator    *CacheInvalidator
	reconstructor  *ResponseReconstructor
	validator      *async.Validator
	failures       *failure.Cache
}

// NewCachingExecutor builds a CachingExecutor over backend (the origin
// round tripper), store (the Storage backend), and factory (the Resource
// factory used to build cached bodies), configured by opts.
func NewCachingExecutor(backend http.RoundTripper, store storage.Storage, factory resource.Factory, opts ...ExecutorOption) *CachingExecutor {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	responsePolicy := &ResponseCachingPolicy{
		Shared:    config.Shared,
		Allow303:  config.Allow303Caching,
		Allow307:  config.Allow307Caching,
		Allow206:  config.Allow206Caching,
		AllowHEAD: config.CacheHEADResponses,
	}
	freshnessCalc := &FreshnessCalculator{
		Shared:                   config.Shared,
		HeuristicEnabled:         config.HeuristicCachingEnabled,
		HeuristicCoefficient:     config.HeuristicCoefficient,
		HeuristicDefaultLifetime: config.HeuristicDefaultLifetime,
	}
	failures := failure.New(config.FailureCacheSize)

	e := &CachingExecutor{
		backend:        backend,
		store:          store,
		factory:        factory,
		config:         config,
		requestPolicy:  NewRequestPolicy(config.CacheHEADResponses),
		responsePolicy: responsePolicy,
		freshness:      freshnessCalc,
		suitability:    &SuitabilityChecker{Shared: config.Shared, Freshness: freshnessCalc},
		conditional:    NewConditionalRequestBuilder(),
		updater:        NewCacheEntryUpdater(factory),
		invalidator:    NewCacheInvalidator(store),
		reconstructor:  NewResponseReconstructor(freshnessCalc),
		failures:       failures,
	}

	if config.AsyncWorkersMax > 0 {
		schedule := async.BackoffSchedule{
			InitialDelay: config.InitialExpiry,
			Rate:         config.BackOffRate,
			MaxDelay:     config.MaxExpiry,
		}
		e.validator = async.NewValidator(config.AsyncWorkersMax, schedule, failures, GetLogger())
	}

	return e
}

// SetResilience wires retry/circuit-breaker policies around the foreground
// backend call.
func (e *CachingExecutor) SetResilience(r *ResilienceConfig) {
	e.resilience = r
}

// Shutdown stops accepting and cancels any not-yet-executing async
// revalidation tasks.
func (e *CachingExecutor) Shutdown() {
	if e.validator != nil {
		e.validator.Shutdown()
	}
}

// Execute runs req through the cache, per spec.md §4.9.
func (e *CachingExecutor) Execute(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := GetLogger()

	if !e.requestPolicy.Allow(req) {
		resp, err := e.sendBackend(req)
		if err == nil {
			e.invalidator.Invalidate(ctx, req, resp)
		}
		return resp, err
	}

	primaryKey := primaryCacheKey(req.URL)

	root, found, err := e.store.Get(ctx, primaryKey)
	if err != nil {
		log.Warn("storage: lookup failed, treating as miss", "key", primaryKey, "error", err)
		found = false
	}

	candidate, candidateKey := e.selectCandidate(ctx, req, root, found, primaryKey)
	if candidate == nil {
		return e.miss(ctx, req, primaryKey)
	}

	switch e.suitability.Check(req, candidate) {
	case freshEnough:
		return e.reconstructor.Reconstruct(req, candidate, false, false)
	case cannotUse:
		return e.miss(ctx, req, primaryKey)
	default: // mustRevalidate
		return e.revalidate(ctx, req, candidate, candidateKey, primaryKey)
	}
}

// selectCandidate resolves the entry (if any) that can be checked for
// suitability against req: the primary entry itself, or, for a variant
// root, whichever sub-entry matches the current request's Vary-selected
// headers.
func (e *CachingExecutor) selectCandidate(ctx context.Context, req *http.Request, root *entry.CacheEntry, found bool, primaryKey string) (*entry.CacheEntry, string) {
	if !found {
		return nil, ""
	}
	if !root.IsVariantRoot() {
		return root, primaryKey
	}

	varyNames := varyHeaderNames(root.ResponseHeaders)
	vKey := variantHash(req.Header, varyNames)
	subKey, ok := root.VariantMap[vKey]
	if !ok {
		return nil, ""
	}

	sub, ok, err := e.store.Get(ctx, subKey)
	if err != nil || !ok {
		return nil, ""
	}
	return sub, subKey
}

// miss sends req straight to the backend, runs invalidation, and stores the
// response if the policy permits.
func (e *CachingExecutor) miss(ctx context.Context, req *http.Request, primaryKey string) (*http.Response, error) {
	requestDate := clock.now()
	resp, err := e.sendBackend(req)
	if err != nil {
		return nil, err
	}
	responseDate := clock.now()

	e.invalidator.Invalidate(ctx, req, resp)

	if e.responsePolicy.Allow(req, resp) {
		return e.storeResponse(ctx, req, resp, primaryKey, requestDate, responseDate), nil
	}
	return resp, nil
}

// revalidate handles the SuitabilityChecker's REVALIDATE outcome: either
// schedules an asynchronous conditional request and returns the stale entry
// immediately, or performs the conditional request synchronously.
func (e *CachingExecutor) revalidate(ctx context.Context, req *http.Request, candidate *entry.CacheEntry, candidateKey, primaryKey string) (*http.Response, error) {
	log := GetLogger()

	if e.validator != nil {
		if dur, ok := staleWhileRevalidateWindow(candidate.ResponseHeaders); ok && e.freshness.Staleness(candidate) <= dur {
			identifier := hashIdentifier(candidateKey)
			backgroundReq := req.Clone(context.Background())

			e.validator.Revalidate(identifier, func(taskCtx context.Context) error {
				_, revalErr := e.sendConditional(taskCtx, backgroundReq, candidate, candidateKey, primaryKey)
				return revalErr
			})

			resp, err := e.reconstructor.Reconstruct(req, candidate, true, false)
			if err != nil {
				log.Warn("executor: failed to reconstruct stale response", "error", err)
			}
			return resp, err
		}
	}

	return e.sendConditional(ctx, req, candidate, candidateKey, primaryKey)
}

// sendConditional performs the synchronous revalidation round trip and
// applies its outcome: 304 merges into storage and is reconstructed; a
// fresh 2xx/etc. response replaces the entry like a miss; a backend error
// or 5xx falls back to stale-if-error when permitted.
func (e *CachingExecutor) sendConditional(ctx context.Context, req *http.Request, candidate *entry.CacheEntry, candidateKey, primaryKey string) (*http.Response, error) {
	log := GetLogger()
	condReq := e.conditional.Build(req, candidate, nil).WithContext(ctx)

	requestDate := clock.now()
	resp, err := e.sendBackend(condReq)
	if err != nil {
		if e.freshness.CanStaleOnError(candidate, req.Header) {
			return e.reconstructor.Reconstruct(req, candidate, true, true)
		}
		return nil, err
	}
	responseDate := clock.now()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // 304 has no meaningful body
		resp.Body.Close()

		newResourceID := candidateKey + "#" + hashIdentifier(candidateKey+responseDate.String())
		merged, mergeErr := e.updater.Merge(candidate, resp.Header, requestDate, responseDate, newResourceID)
		if mergeErr != nil {
			log.Warn("executor: failed to merge 304 response", "key", candidateKey, "error", mergeErr)
			return e.reconstructor.Reconstruct(req, candidate, false, false)
		}
		if putErr := e.store.Put(ctx, candidateKey, merged); putErr != nil {
			log.Warn("storage: failed to persist revalidated entry", "key", candidateKey, "error", putErr)
		}
		return e.reconstructor.Reconstruct(req, merged, false, false)

	case resp.StatusCode >= 500:
		if e.freshness.CanStaleOnError(candidate, req.Header) {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()
			return e.reconstructor.Reconstruct(req, candidate, true, true)
		}
		return resp, nil

	default:
		if e.responsePolicy.Allow(req, resp) {
			return e.storeResponse(ctx, req, resp, primaryKey, requestDate, responseDate), nil
		}
		return resp, nil
	}
}

// staleWhileRevalidateWindow reports the parsed stale-while-revalidate
// duration, if present and well-formed.
func staleWhileRevalidateWindow(headers http.Header) (time.Duration, bool) {
	cc := parseCacheControl(headers, GetLogger())
	v, ok := cc[cacheControlStaleWhileRevalidate]
	if !ok || v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v + "s")
	if err != nil {
		return 0, false
	}
	return d, true
}

func hashIdentifier(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// storeResponse buffers resp's body fully, replaces it with a fresh reader
// over the same bytes for the caller, and stores a CacheEntry built from
// those bytes when they fit within MaxObjectSizeBytes.
func (e *CachingExecutor) storeResponse(ctx context.Context, req *http.Request, resp *http.Response, primaryKey string, requestDate, responseDate time.Time) *http.Response {
	log := GetLogger()

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		log.Warn("executor: failed reading response body", "error", err)
		resp.Body = http.NoBody
		return resp
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))

	if int64(len(data)) > e.config.MaxObjectSizeBytes {
		log.Debug("executor: response exceeds max object size, not caching", "key", primaryKey, "size", len(data))
		return resp
	}

	varyNames := varyHeaderNames(resp.Header)
	if len(varyNames) == 0 {
		e.storeDirect(ctx, req, resp, data, primaryKey, requestDate, responseDate)
		return resp
	}
	if varyNames[0] == "*" {
		return resp
	}

	e.storeVariant(ctx, req, resp, data, primaryKey, varyNames, requestDate, responseDate)
	return resp
}

func (e *CachingExecutor) storeDirect(ctx context.Context, req *http.Request, resp *http.Response, data []byte, primaryKey string, requestDate, responseDate time.Time) {
	log := GetLogger()
	res, err := e.factory.Generate(primaryKey, bytes.NewReader(data), e.config.MaxObjectSizeBytes)
	if err != nil {
		if !errors.Is(err, resource.ErrSizeExceeded) {
			log.Warn("executor: failed to build resource", "key", primaryKey, "error", err)
		}
		return
	}

	e.put(ctx, primaryKey, &entry.CacheEntry{
		RequestDate:     requestDate,
		ResponseDate:    responseDate,
		StatusCode:      resp.StatusCode,
		ReasonPhrase:    http.StatusText(resp.StatusCode),
		ResponseHeaders: resp.Header.Clone(),
		Resource:        res,
		RequestMethod:   req.Method,
	})
}

func (e *CachingExecutor) storeVariant(ctx context.Context, req *http.Request, resp *http.Response, data []byte, primaryKey string, varyNames []string, requestDate, responseDate time.Time) {
	log := GetLogger()
	vKey := variantHash(req.Header, varyNames)
	subKey := variantStorageKey(primaryKey, vKey)

	res, err := e.factory.Generate(subKey, bytes.NewReader(data), e.config.MaxObjectSizeBytes)
	if err != nil {
		if !errors.Is(err, resource.ErrSizeExceeded) {
			log.Warn("executor: failed to build variant resource", "key", subKey, "error", err)
		}
		return
	}

	e.put(ctx, subKey, &entry.CacheEntry{
		RequestDate:     requestDate,
		ResponseDate:    responseDate,
		StatusCode:      resp.StatusCode,
		ReasonPhrase:    http.StatusText(resp.StatusCode),
		ResponseHeaders: resp.Header.Clone(),
		Resource:        res,
		RequestMethod:   req.Method,
	})

	rootHeaders := http.Header{}
	rootHeaders[headerVary] = resp.Header.Values(headerVary)

	err = e.store.Update(ctx, primaryKey, func(old *entry.CacheEntry) (*entry.CacheEntry, error) {
		variantMap := map[string]string{}
		if old != nil && old.IsVariantRoot() {
			for k, v := range old.VariantMap {
				variantMap[k] = v
			}
		}
		variantMap[vKey] = subKey

		return &entry.CacheEntry{
			RequestDate:     requestDate,
			ResponseDate:    responseDate,
			ResponseHeaders: rootHeaders,
			VariantMap:      variantMap,
			RequestMethod:   req.Method,
		}, nil
	})
	if err != nil {
		log.Warn("storage: failed to update variant root", "key", primaryKey, "error", err)
	}
}

func (e *CachingExecutor) put(ctx context.Context, key string, ent *entry.CacheEntry) {
	if err := e.store.Put(ctx, key, ent); err != nil {
		GetLogger().Warn("storage: put failed", "key", key, "error", err)
	}
}

// sendBackend sends req to the configured backend round tripper, wrapped in
// whatever retry/circuit-breaker resilience policy is configured.
func (e *CachingExecutor) sendBackend(req *http.Request) (*http.Response, error) {
	backend := e.backend
	if backend == nil {
		backend = http.DefaultTransport
	}
	return executeWithResilience(e.resilience, func() (*http.Response, error) {
		return backend.RoundTrip(req)
	})
}
