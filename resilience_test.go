package httpcache

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyBuilder_RetriesUntilSuccess(t *testing.T) {
	policy := RetryPolicyBuilder().Build()
	require.NotNil(t, policy)

	attempts := 0
	fn := func() (*http.Response, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient error")
		}
		return &http.Response{StatusCode: http.StatusOK}, nil
	}

	resp, err := failsafe.With(policy).Get(fn)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, attempts)
}

func TestCircuitBreakerBuilder_OpensAfterFailureThreshold(t *testing.T) {
	cb := CircuitBreakerBuilder().WithDelay(100 * time.Millisecond).Build()
	require.NotNil(t, cb)
	assert.True(t, cb.IsClosed())

	for i := 0; i < 5; i++ {
		cb.RecordError(errors.New("boom"))
	}
	assert.True(t, cb.IsOpen())
}

func TestTransport_RetriesOn5xxViaResilience(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	retryPolicy := RetryPolicyBuilder().
		WithMaxRetries(3).
		WithBackoff(5*time.Millisecond, 20*time.Millisecond).
		Build()

	tp := NewTransport(http.DefaultTransport).WithResilience(&ResilienceConfig{RetryPolicy: retryPolicy})
	client := tp.Client()

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestExecuteWithResilience_NilConfigIsPassthrough(t *testing.T) {
	var calls int
	resp, err := executeWithResilience(nil, func() (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: http.StatusOK}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, calls)
}
