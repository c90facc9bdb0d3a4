// Package httpcache provides a http.RoundTripper implementation that works as a
// mostly RFC 9111 compliant cache for HTTP responses.
package httpcache

import (
	"net/http"
	"strconv"
	"strings"
)

// addWarningHeader adds a Warning header to the response per RFC 7234
// Section 5.5. Warning headers can be stacked, so Add is used instead of
// Set.
func addWarningHeader(resp *http.Response, warningCode string) {
	resp.Header.Add(headerWarning, warningCode)
}

// addStaleWarning adds the "110 Response is Stale" warning.
func addStaleWarning(resp *http.Response) {
	addWarningHeader(resp, warningResponseIsStale)
}

// addRevalidationFailedWarning adds the "111 Revalidation Failed" warning.
func addRevalidationFailedWarning(resp *http.Response) {
	addWarningHeader(resp, warningRevalidationFailed)
}

// warnCode parses the leading warn-code (a 3-digit integer) out of a single
// Warning header value, per RFC 7234 §5.5:
//
//	Warning = warn-code SP warn-agent SP warn-text [SP warn-date]
//
// Returns false if the value does not begin with a well-formed warn-code.
func warnCode(value string) (code int, ok bool) {
	value = strings.TrimSpace(value)
	sp := strings.IndexByte(value, ' ')
	if sp < 0 {
		sp = len(value)
	}
	codeStr := value[:sp]
	if len(codeStr) != 3 {
		return 0, false
	}
	n, err := strconv.Atoi(codeStr)
	if err != nil {
		return 0, false
	}
	return n, true
}

// stripWarningsByLeadingDigit removes every Warning header value whose
// warn-code begins with digit from headers.
func stripWarningsByLeadingDigit(headers http.Header, digit byte) {
	values := headers.Values(headerWarning)
	if len(values) == 0 {
		return
	}

	kept := values[:0:0]
	for _, v := range values {
		if code, ok := warnCode(v); ok && byte('0'+(code/100)) == digit {
			continue
		}
		kept = append(kept, v)
	}

	headers.Del(headerWarning)
	for _, v := range kept {
		headers.Add(headerWarning, v)
	}
}
