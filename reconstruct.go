package httpcache

import (
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/relaycache/httpcache/entry"
)

// ResponseReconstructor builds an http.Response for the caller out of a
// stored CacheEntry, per spec.md §4.10.
type ResponseReconstructor struct {
	Freshness *FreshnessCalculator
}

// NewResponseReconstructor returns a ResponseReconstructor sharing fr for
// its Age computation.
func NewResponseReconstructor(fr *FreshnessCalculator) *ResponseReconstructor {
	return &ResponseReconstructor{Freshness: fr}
}

// Reconstruct builds the response req would receive from e. Set stale to
// true to mark the response as being served outside its normal freshness
// window (adds a Warning: 110); set revalidationFailed to additionally mark
// a failed revalidation attempt (adds a Warning: 111 instead of 110).
func (r *ResponseReconstructor) Reconstruct(req *http.Request, e *entry.CacheEntry, stale, revalidationFailed bool) (*http.Response, error) {
	headers := e.ResponseHeaders.Clone()

	age := r.Freshness.CurrentAge(e)
	ageSeconds := int64(age.Seconds())
	if ageSeconds > math.MaxInt32 {
		ageSeconds = math.MaxInt32
	}
	headers.Set(headerAge, strconv.FormatInt(ageSeconds, 10))

	var body io.ReadCloser = http.NoBody
	contentLength := int64(-1)
	if e.Resource != nil {
		stream, err := e.Resource.Open()
		if err != nil {
			return nil, err
		}
		body = stream
		contentLength = e.Resource.Length()
	}

	if headers.Get(headerContentLength) == "" && headers.Get(headerTransferEncoding) == "" && contentLength >= 0 {
		headers.Set(headerContentLength, strconv.FormatInt(contentLength, 10))
	}

	resp := &http.Response{
		Status:        httpStatusLine(e.StatusCode, e.ReasonPhrase),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          body,
		ContentLength: contentLength,
		Request:       req,
	}
	resp.Header.Set(XFromCache, "1")

	if revalidationFailed {
		addRevalidationFailedWarning(resp)
	} else if stale {
		addStaleWarning(resp)
	}

	return resp, nil
}

func httpStatusLine(statusCode int, reasonPhrase string) string {
	if reasonPhrase == "" {
		reasonPhrase = http.StatusText(statusCode)
	}
	return strconv.Itoa(statusCode) + " " + reasonPhrase
}
