package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/mcoot/matchboard/internal/testutil"
)

func newTestLimiter(t *testing.T, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{
		Rate:            rate.Every(time.Hour),
		Burst:           burst,
		CleanupInterval: time.Minute,
	}, testutil.NopLogger())
	t.Cleanup(rl.Stop)
	return rl
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := newTestLimiter(t, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestFrom("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Same host on a different port shares the bucket
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, requestFrom("10.0.0.1:2000"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":false,"message":"Too many requests"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, requestFrom("10.0.0.2:1000"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	assert.Equal(t, 2, rl.ClientCount())
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newTestLimiter(t, 5)
	rl.limiter("10.0.0.1")
	rl.limiter("10.0.0.2")

	rl.cleanup(time.Now())
	assert.Equal(t, 2, rl.ClientCount())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.ClientCount())
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := newTestLimiter(t, 1)
	rl.Stop()
	rl.Stop()
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 1, retryAfter(rate.Limit(20)))
	assert.Equal(t, 2, retryAfter(rate.Limit(0.5)))
	assert.Equal(t, 1, retryAfter(rate.Inf))
	assert.Equal(t, 1, retryAfter(0))
}

func TestClientAddr(t *testing.T) {
	assert.Equal(t, "192.0.2.7", clientAddr(requestFrom("192.0.2.7:5555")))
	assert.Equal(t, "unix", clientAddr(requestFrom("unix")))
}
