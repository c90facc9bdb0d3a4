package serializer

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/relaycache/httpcache/entry"
	"github.com/relaycache/httpcache/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildEntry(t *testing.T, body string) *entry.CacheEntry {
	t.Helper()
	f := resource.NewMemoryFactory()
	res, err := f.Generate("k", strings.NewReader(body), 1024)
	require.NoError(t, err)

	return &entry.CacheEntry{
		RequestDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ResponseDate:    time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
		StatusCode:      200,
		ReasonPhrase:    "OK",
		ResponseHeaders: http.Header{"ETag": []string{`"v1"`}},
		Resource:        res,
		RequestMethod:   http.MethodGet,
	}
}

func TestGobSerializer_RoundTrip(t *testing.T) {
	s := NewGobSerializer(resource.NewMemoryFactory())
	e := buildEntry(t, "hello world")

	data, err := s.Write(e)
	require.NoError(t, err)

	got, err := s.Read(data, "k")
	require.NoError(t, err)

	assert.Equal(t, e.StatusCode, got.StatusCode)
	assert.Equal(t, e.ResponseHeaders.Get("ETag"), got.ResponseHeaders.Get("ETag"))

	body, err := resource.ReadAll(got.Resource)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
}

func TestGobSerializer_VariantRootHasNoResource(t *testing.T) {
	s := NewGobSerializer(resource.NewMemoryFactory())
	e := &entry.CacheEntry{
		StatusCode:      200,
		ResponseHeaders: http.Header{},
		VariantMap:      map[string]string{"gzip": "variantkey"},
	}

	data, err := s.Write(e)
	require.NoError(t, err)

	got, err := s.Read(data, "root")
	require.NoError(t, err)
	assert.Nil(t, got.Resource)
	assert.Equal(t, "variantkey", got.VariantMap["gzip"])
}

func TestEncryptingSerializer_RoundTrip(t *testing.T) {
	inner := NewGobSerializer(resource.NewMemoryFactory())
	s, err := NewEncryptingSerializer(inner, "test-passphrase")
	require.NoError(t, err)

	e := buildEntry(t, "encrypted body")
	data, err := s.Write(e)
	require.NoError(t, err)

	// Ciphertext should not contain the plaintext body.
	assert.NotContains(t, string(data), "encrypted body")

	got, err := s.Read(data, "k")
	require.NoError(t, err)
	body, err := resource.ReadAll(got.Resource)
	require.NoError(t, err)
	assert.Equal(t, "encrypted body", string(body))
}

func TestEncryptingSerializer_WrongPassphraseFails(t *testing.T) {
	inner := NewGobSerializer(resource.NewMemoryFactory())
	writer, err := NewEncryptingSerializer(inner, "correct")
	require.NoError(t, err)
	reader, err := NewEncryptingSerializer(inner, "wrong")
	require.NoError(t, err)

	data, err := writer.Write(buildEntry(t, "secret"))
	require.NoError(t, err)

	_, err = reader.Read(data, "k")
	assert.Error(t, err)
}
