package baldr_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/movermeyer/baldr"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_allows_within_burst(t *testing.T) {
	t.Parallel()

	mw := baldr.RateLimit(baldr.RateLimitConfig{Rate: 1, Burst: 3})
	handler := mw(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i)
	}
}

func TestRateLimit_rejects_over_burst(t *testing.T) {
	t.Parallel()

	mw := baldr.RateLimit(baldr.RateLimitConfig{Rate: 0.001, Burst: 1})
	handler := mw(okHandler())

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRateLimit_keys_are_independent(t *testing.T) {
	t.Parallel()

	mw := baldr.RateLimit(baldr.RateLimitConfig{Rate: 0.001, Burst: 1})
	handler := mw(okHandler())

	for _, addr := range []string{"10.0.0.3:1", "10.0.0.4:1"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "first request from %s should pass", addr)
	}
}

func TestRateLimit_custom_key_func(t *testing.T) {
	t.Parallel()

	mw := baldr.RateLimit(baldr.RateLimitConfig{
		Rate:    0.001,
		Burst:   1,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("X-API-Key") },
	})
	handler := mw(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "key-a")

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set("X-API-Key", "key-b")
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, other)
	assert.Equal(t, http.StatusOK, third.Code)
}

func TestRateLimit_limit_response_is_error_resource(t *testing.T) {
	t.Parallel()

	mw := baldr.RateLimit(baldr.RateLimitConfig{Rate: 0.001, Burst: 1})
	handler := mw(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.6:1"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var e baldr.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, http.StatusTooManyRequests, e.Status)
	assert.Equal(t, 42900, e.Code)
	assert.Equal(t, "Too many requests, please try again later.", e.Message)
}

func TestRateLimit_limit_response_honors_accept(t *testing.T) {
	t.Parallel()

	mw := baldr.RateLimit(baldr.RateLimitConfig{Rate: 0.001, Burst: 1})
	handler := mw(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:1"
	req.Header.Set("Accept", "application/yaml")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var e baldr.Error
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, 42900, e.Code)
}

func TestRateLimit_custom_on_limit(t *testing.T) {
	t.Parallel()

	mw := baldr.RateLimit(baldr.RateLimitConfig{
		Rate:  0.001,
		Burst: 1,
		OnLimit: func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "slow down", http.StatusServiceUnavailable)
		},
	})
	handler := mw(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:1"

	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
