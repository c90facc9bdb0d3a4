// Package httpcache provides a http.RoundTripper implementation that works as a
// mostly RFC 9111 compliant cache for HTTP responses.
package httpcache

import (
	"fmt"
	"net/url"
	"strings"
)

// primaryCacheKey returns the normalized storage key for req's URL, per
// spec.md §3: "{scheme}://{host}:{port}{path-and-query}" with a
// case-normalized scheme and host and the default port for the scheme
// omitted.
func primaryCacheKey(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	if port == defaultPortFor(scheme) {
		port = ""
	}

	hostport := host
	if port != "" {
		hostport = fmt.Sprintf("%s:%s", host, port)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return fmt.Sprintf("%s://%s%s", scheme, hostport, path)
}

func defaultPortFor(scheme string) string {
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	default:
		return ""
	}
}

// variantStorageKey combines a variant digest with the primary key into the
// sub-entry's storage key, per spec.md §3: "{variant_hash}_{primary_key}".
func variantStorageKey(primaryKey, variantHash string) string {
	return variantHash + "_" + primaryKey
}
