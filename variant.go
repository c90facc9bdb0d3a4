package httpcache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
)

// varyHeaderNames parses a response's Vary header into a normalized,
// deduplicated list of header names. A bare "*" is returned as-is: callers
// must treat it as "never cacheable as a variant", per spec.md §4.2.
func varyHeaderNames(respHeaders http.Header) []string {
	raw := respHeaders.Values(headerVary)
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, line := range raw {
		for _, name := range strings.Split(line, ",") {
			name = http.CanonicalHeaderKey(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if name == "*" {
				return []string{"*"}
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// variantHash computes a stable digest of the request header values
// selected by varyNames, used as the discriminator between variant
// sub-entries sharing the same primary key.
func variantHash(reqHeaders http.Header, varyNames []string) string {
	if len(varyNames) == 0 {
		return ""
	}

	names := append([]string(nil), varyNames...)
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(reqHeaders.Get(name)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
