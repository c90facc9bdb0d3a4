package httpcache

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/relaycache/httpcache/storage"
)

// CacheInvalidator removes cache entries that an unsafe request or a
// redirecting response might have made obsolete, per spec.md §4.7.
// Invalidation is best-effort: errors are logged, never propagated, and
// nothing is ever re-fetched.
type CacheInvalidator struct {
	store storage.Storage
}

// NewCacheInvalidator returns a CacheInvalidator operating on store.
func NewCacheInvalidator(store storage.Storage) *CacheInvalidator {
	return &CacheInvalidator{store: store}
}

// Invalidate removes entries for req's URI and, when present and
// same-host, the Location and Content-Location URIs carried by resp.
func (inv *CacheInvalidator) Invalidate(ctx context.Context, req *http.Request, resp *http.Response) {
	if inv.store == nil {
		return
	}

	log := GetLogger()

	if !unsafeMethods[req.Method] && (resp == nil || !isRedirecting(resp, req)) {
		return
	}

	inv.remove(ctx, primaryCacheKey(req.URL), log)

	if resp == nil {
		return
	}

	for _, header := range []string{headerLocation, headerContentLocation} {
		raw := resp.Header.Get(header)
		if raw == "" {
			continue
		}
		ref, err := req.URL.Parse(raw)
		if err != nil {
			log.Debug("invalidator: failed to parse redirect URI", "header", header, "value", raw, "error", err)
			continue
		}
		if ref.Hostname() != req.URL.Hostname() {
			continue
		}
		inv.remove(ctx, primaryCacheKey(ref), log)
	}
}

func (inv *CacheInvalidator) remove(ctx context.Context, key string, log *slog.Logger) {
	if err := inv.store.Remove(ctx, key); err != nil {
		log.Debug("invalidator: best-effort remove failed", "key", key, "error", err)
	}
}

// isRedirecting reports whether resp carries a Location or Content-Location
// header pointing back at req's host, which also triggers invalidation even
// for otherwise-safe methods.
func isRedirecting(resp *http.Response, req *http.Request) bool {
	for _, header := range []string{headerLocation, headerContentLocation} {
		raw := resp.Header.Get(header)
		if raw == "" {
			continue
		}
		ref, err := req.URL.Parse(raw)
		if err != nil {
			continue
		}
		if ref.Hostname() == req.URL.Hostname() {
			return true
		}
	}
	return false
}
