package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	handler := NewRateLimiter(rate.Limit(1), 3).Limit(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.RemoteAddr = "10.0.0.1:52000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	t.Parallel()

	handler := NewRateLimiter(rate.Limit(1), 1).Limit(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	first.RemoteAddr = "10.0.0.2:52000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	assert.Equal(t, http.StatusOK, w.Code)

	second := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	second.RemoteAddr = "10.0.0.2:52001"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, second)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRateLimiter_TracksClientsIndependently(t *testing.T) {
	t.Parallel()

	handler := NewRateLimiter(rate.Limit(1), 1).Limit(okHandler())

	exhaust := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	exhaust.RemoteAddr = "10.0.0.3:52000"
	handler.ServeHTTP(httptest.NewRecorder(), exhaust)

	other := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	other.RemoteAddr = "10.0.0.4:52000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, other)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_Stop(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(rate.Limit(1), 1)
	handler := rl.Limit(okHandler())

	rl.Stop()
	rl.Stop()

	select {
	case <-rl.done:
	default:
		t.Fatal("done channel should be closed after Stop")
	}

	// Limiting keeps working after the cleanup goroutine exits.
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.RemoteAddr = "10.0.0.5:52000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:8443"
	assert.Equal(t, "192.168.1.9", clientIP(req))

	req.RemoteAddr = "not-host-port"
	assert.Equal(t, "not-host-port", clientIP(req))
}
