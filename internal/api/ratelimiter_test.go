package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type staticLimiter struct {
	allow bool
	wait  time.Duration
}

func (s *staticLimiter) Allow() (bool, time.Duration) {
	return s.allow, s.wait
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	limiter := &staticLimiter{allow: false, wait: 1500 * time.Millisecond}
	middleware := rateLimitMiddleware(zaptest.NewLogger(t), limiter, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After of 2 seconds, got %q", got)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(zaptest.NewLogger(t), &staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
	if rec.Header().Get("Retry-After") != "" {
		t.Fatalf("expected no Retry-After header on allowed requests")
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if ok, _ := limiter.Allow(); !ok {
		t.Fatalf("expected first request to be allowed")
	}
}

func TestTokenBucketReportsWaitWhenExhausted(t *testing.T) {
	limiter := newTokenBucketLimiter(2, 1).(*tokenBucket)
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }

	if ok, _ := limiter.Allow(); !ok {
		t.Fatalf("expected burst token to be available")
	}
	ok, wait := limiter.Allow()
	if ok {
		t.Fatalf("expected second request to be denied")
	}
	if wait != 500*time.Millisecond {
		t.Fatalf("expected 500ms wait at 2 rps, got %v", wait)
	}

	// A denied request must not consume the next token.
	now = now.Add(500 * time.Millisecond)
	if ok, _ := limiter.Allow(); !ok {
		t.Fatalf("expected token to refill after wait")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	testCases := []struct {
		wait time.Duration
		want int
	}{
		{0, 1},
		{10 * time.Millisecond, 1},
		{time.Second, 1},
		{1001 * time.Millisecond, 2},
		{3 * time.Second, 3},
	}
	for _, tc := range testCases {
		if got := retryAfterSeconds(tc.wait); got != tc.want {
			t.Fatalf("retryAfterSeconds(%v) = %d, want %d", tc.wait, got, tc.want)
		}
	}
}
