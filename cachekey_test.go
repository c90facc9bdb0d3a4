package httpcache

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryCacheKey_NormalizesSchemeAndHostCase(t *testing.T) {
	u, err := url.Parse("HTTP://Example.COM/path?q=1")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/path?q=1", primaryCacheKey(u))
}

func TestPrimaryCacheKey_OmitsDefaultPort(t *testing.T) {
	u, err := url.Parse("http://example.com:80/path")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/path", primaryCacheKey(u))

	https, err := url.Parse("https://example.com:443/path")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path", primaryCacheKey(https))
}

func TestPrimaryCacheKey_KeepsNonDefaultPort(t *testing.T) {
	u, err := url.Parse("http://example.com:8080/path")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8080/path", primaryCacheKey(u))
}

func TestPrimaryCacheKey_DefaultsPathToSlash(t *testing.T) {
	u, err := url.Parse("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", primaryCacheKey(u))
}

func TestVariantStorageKey(t *testing.T) {
	assert.Equal(t, "deadbeef_http://example.com/", variantStorageKey("http://example.com/", "deadbeef"))
}
