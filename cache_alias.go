package httpcache

import "github.com/relaycache/httpcache/cache"

// Cache is the byte-level backend interface implemented by diskcache,
// freecache, redis, leveldbcache, and the wrapper/* compositions. It is an
// alias for cache.Cache so that those packages need only depend on the
// small cache package, not the root package, while callers can still write
// httpcache.Cache as before.
type Cache = cache.Cache
