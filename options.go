// Package httpcache provides a http.RoundTripper implementation that works as a
// mostly RFC 9111 compliant cache for HTTP responses.
package httpcache

import "time"

// Config holds every tunable of the caching layer, per spec.md §6. A zero
// Config is not valid; build one with DefaultConfig and ExecutorOptions.
type Config struct {
	// MaxObjectSizeBytes caps the size of a response body that will be
	// stored; larger responses are still returned to the caller but never
	// cached. Default 8192.
	MaxObjectSizeBytes int64
	// Shared marks this cache as serving multiple users (a shared/proxy
	// cache rather than a single-user private cache). Default true.
	Shared bool
	// MaxCacheEntries bounds the in-memory Storage implementation. Zero
	// means unbounded.
	MaxCacheEntries int
	// AsyncWorkersMax bounds the stale-while-revalidate worker pool; 0
	// disables asynchronous revalidation entirely (revalidation always
	// happens synchronously on the request path).
	AsyncWorkersMax int
	// RevalidationQueueSize is an informational cap surfaced to callers
	// building their own scheduling front-end; this implementation's
	// worker pool has no unbounded queue to size (tasks are scheduled
	// directly via a timer), so it is otherwise unused.
	RevalidationQueueSize int

	HeuristicCachingEnabled  bool
	HeuristicCoefficient     float64
	HeuristicDefaultLifetime time.Duration

	Allow303Caching bool
	Allow307Caching bool
	Allow206Caching bool
	// CacheHEADResponses permits caching HEAD responses, an extension
	// beyond spec.md's baseline GET-only model.
	CacheHEADResponses bool

	InitialExpiry time.Duration
	BackOffRate   float64
	MaxExpiry     time.Duration

	// FailureCacheSize bounds the FailureCache backing the back-off
	// schedule. Default 1000.
	FailureCacheSize int
}

// DefaultConfig returns spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxObjectSizeBytes:       8192,
		Shared:                   true,
		AsyncWorkersMax:          0,
		HeuristicCachingEnabled:  true,
		HeuristicCoefficient:     0.1,
		HeuristicDefaultLifetime: 0,
		InitialExpiry:            6 * time.Second,
		BackOffRate:              10,
		MaxExpiry:                24 * time.Hour,
		FailureCacheSize:         1000,
	}
}

// ExecutorOption customizes a Config before a CachingExecutor is built from
// it.
type ExecutorOption func(*Config)

// WithMaxObjectSizeBytes sets the largest response body that will be
// stored.
func WithMaxObjectSizeBytes(n int64) ExecutorOption {
	return func(c *Config) { c.MaxObjectSizeBytes = n }
}

// WithSharedCache toggles shared-cache semantics (s-maxage, proxy-revalidate,
// the Authorization-header rule).
func WithSharedCache(shared bool) ExecutorOption {
	return func(c *Config) { c.Shared = shared }
}

// WithMaxCacheEntries bounds the built-in in-memory Storage.
func WithMaxCacheEntries(n int) ExecutorOption {
	return func(c *Config) { c.MaxCacheEntries = n }
}

// WithAsyncWorkers sets the stale-while-revalidate worker pool size. Zero
// disables asynchronous revalidation.
func WithAsyncWorkers(n int) ExecutorOption {
	return func(c *Config) { c.AsyncWorkersMax = n }
}

// WithHeuristicCaching enables or disables RFC 9111 §4.2.2 heuristic
// freshness lifetimes and sets the coefficient/default lifetime used.
func WithHeuristicCaching(enabled bool, coefficient float64, defaultLifetime time.Duration) ExecutorOption {
	return func(c *Config) {
		c.HeuristicCachingEnabled = enabled
		c.HeuristicCoefficient = coefficient
		c.HeuristicDefaultLifetime = defaultLifetime
	}
}

// WithConditionalStatusCaching enables caching of 303/307/206 responses,
// each of which RFC 9111 permits only when explicitly configured.
func WithConditionalStatusCaching(allow303, allow307, allow206 bool) ExecutorOption {
	return func(c *Config) {
		c.Allow303Caching = allow303
		c.Allow307Caching = allow307
		c.Allow206Caching = allow206
	}
}

// WithHEADCaching enables caching HEAD responses.
func WithHEADCaching(enabled bool) ExecutorOption {
	return func(c *Config) { c.CacheHEADResponses = enabled }
}

// WithBackoff sets the async revalidation back-off schedule's parameters.
func WithBackoff(initial time.Duration, rate float64, max time.Duration) ExecutorOption {
	return func(c *Config) {
		c.InitialExpiry = initial
		c.BackOffRate = rate
		c.MaxExpiry = max
	}
}

// WithFailureCacheSize bounds the FailureCache tracking consecutive
// revalidation failures per identifier.
func WithFailureCacheSize(n int) ExecutorOption {
	return func(c *Config) { c.FailureCacheSize = n }
}
