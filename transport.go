// Package httpcache provides a http.RoundTripper implementation that works as a
// mostly RFC 9111 compliant cache for HTTP responses.
package httpcache

import (
	"net/http"

	"github.com/relaycache/httpcache/resource"
	"github.com/relaycache/httpcache/storage"
)

// Transport adapts a CachingExecutor to the http.RoundTripper interface so
// it can be dropped into an *http.Client.
type Transport struct {
	Executor *CachingExecutor
}

// NewTransport builds a Transport backed by an in-memory Storage bounded by
// config.MaxCacheEntries, sending cache misses to backend (http.DefaultTransport
// if nil).
func NewTransport(backend http.RoundTripper, opts ...ExecutorOption) *Transport {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	store := storage.NewMemory(config.MaxCacheEntries)
	factory := resource.NewMemoryFactory()

	return NewTransportWithStorage(backend, store, factory, opts...)
}

// NewTransportWithStorage builds a Transport over an explicit Storage
// backend and Resource factory, for callers using a persistent or remote
// Storage implementation (diskcache, redis, leveldbcache, storage.Tiered).
func NewTransportWithStorage(backend http.RoundTripper, store storage.Storage, factory resource.Factory, opts ...ExecutorOption) *Transport {
	if backend == nil {
		backend = http.DefaultTransport
	}
	return &Transport{Executor: NewCachingExecutor(backend, store, factory, opts...)}
}

// WithResilience wires retry/circuit-breaker policies into t's executor and
// returns t for chaining.
func (t *Transport) WithResilience(cfg *ResilienceConfig) *Transport {
	t.Executor.SetResilience(cfg)
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.Executor.Execute(req)
}

// Shutdown stops t's background revalidation workers.
func (t *Transport) Shutdown() {
	t.Executor.Shutdown()
}

// Client returns an *http.Client using t as its transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}
