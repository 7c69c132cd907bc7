package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"olp/compat/pkg/logger"
)

func TestHTTPProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/orders", r.URL.Path)
		assert.Equal(t, "v2_good", r.URL.Query().Get("case"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orderId": "v2-100", "state": "PAID"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second, 3, time.Millisecond, logger.NewNopLogger())
	status, body, err := p.Fetch(context.Background(), "GET", "/api/v2/orders", map[string]string{"case": "v2_good"})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "v2-100", body["orderId"])
}

func TestHTTPProviderRetriesTransient(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Inc() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": "SERVICE_UNAVAILABLE", "message": "try later"}`))
			return
		}
		w.Write([]byte(`{"orderId": "v2-100"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second, 3, time.Millisecond, logger.NewNopLogger())
	status, body, err := p.Fetch(context.Background(), "GET", "/api/v2/orders", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "v2-100", body["orderId"])
	assert.Equal(t, int64(3), calls.Load())
}

func TestHTTPProviderNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "INVALID_REQUEST", "message": "bad id"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second, 3, time.Millisecond, logger.NewNopLogger())
	status, body, err := p.Fetch(context.Background(), "GET", "/api/v2/orders", nil)
	require.NoError(t, err, "non-retryable statuses are returned, not retried")
	assert.Equal(t, 400, status)
	assert.Equal(t, "INVALID_REQUEST", body["error"])
	assert.Equal(t, int64(1), calls.Load())
}

func TestHTTPProviderExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second, 2, time.Millisecond, logger.NewNopLogger())
	status, _, err := p.Fetch(context.Background(), "GET", "/api/v2/orders", nil)
	require.NoError(t, err, "last upstream response is surfaced after retries run out")
	assert.Equal(t, 503, status)
}

func TestHTTPProviderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 先关掉, 所有连接都会失败

	p := NewHTTPProvider(srv.URL, time.Second, 2, time.Millisecond, logger.NewNopLogger())
	_, _, err := p.Fetch(context.Background(), "GET", "/api/v2/orders", nil)
	assert.Error(t, err)
}
