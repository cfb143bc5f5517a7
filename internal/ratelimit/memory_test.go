package ratelimit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WEAV04/willy/internal/ratelimit"
)

func TestMemoryLimiter_BurstThenDeny(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(1, 3)
	defer l.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "subject:u1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d within burst", i)
	}
	ok, err := l.Allow(ctx, "subject:u1")
	require.NoError(t, err)
	assert.False(t, ok, "burst exhausted")
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(1, 1)
	defer l.Close()
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "subject:u1")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "subject:u1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "subject:u2")
	assert.True(t, ok, "a throttled subject must not affect another")
}

func TestMemoryLimiter_Refills(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(100, 1)
	defer l.Close()
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "subject:u1")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "subject:u1")
	require.False(t, ok)

	time.Sleep(30 * time.Millisecond) // at 100/s this refills the bucket
	ok, _ = l.Allow(ctx, "subject:u1")
	assert.True(t, ok)
}

func TestMiddleware_DeniesWithEnvelope(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(0.001, 1)
	defer l.Close()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := ratelimit.Middleware(l, ratelimit.IPKeyFunc, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/messages", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestMiddleware_EmptyKeySkips(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(0.001, 1)
	defer l.Close()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	skipAll := func(*http.Request) string { return "" }
	h := ratelimit.Middleware(l, skipAll, nil)(next)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
