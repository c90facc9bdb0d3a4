package httpcache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newReq(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.ProtoMajor = 1
	req.ProtoMinor = 1
	return req
}

func TestRequestPolicy_AllowsPlainGET(t *testing.T) {
	p := NewRequestPolicy(false)
	assert.True(t, p.Allow(newReq(http.MethodGet, "/a")))
}

func TestRequestPolicy_RejectsNonGET(t *testing.T) {
	p := NewRequestPolicy(false)
	assert.False(t, p.Allow(newReq(http.MethodPost, "/a")))
	assert.False(t, p.Allow(newReq(http.MethodHead, "/a")))
}

func TestRequestPolicy_AllowsHEADWhenConfigured(t *testing.T) {
	p := NewRequestPolicy(true)
	assert.True(t, p.Allow(newReq(http.MethodHead, "/a")))
}

func TestRequestPolicy_RejectsHTTP10(t *testing.T) {
	p := NewRequestPolicy(false)
	req := newReq(http.MethodGet, "/a")
	req.ProtoMinor = 0
	assert.False(t, p.Allow(req))
}

func TestRequestPolicy_RejectsPragma(t *testing.T) {
	p := NewRequestPolicy(false)
	req := newReq(http.MethodGet, "/a")
	req.Header.Set("Pragma", "no-cache")
	assert.False(t, p.Allow(req))
}

func TestRequestPolicy_RejectsNoStoreAndNoCache(t *testing.T) {
	p := NewRequestPolicy(false)

	noStore := newReq(http.MethodGet, "/a")
	noStore.Header.Set("Cache-Control", "no-store")
	assert.False(t, p.Allow(noStore))

	noCache := newReq(http.MethodGet, "/a")
	noCache.Header.Set("Cache-Control", "no-cache")
	assert.False(t, p.Allow(noCache))
}
