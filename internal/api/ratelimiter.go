package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiter decides whether a request may proceed. When it may not, wait is
// how long the caller should back off before retrying.
type rateLimiter interface {
	Allow() (ok bool, wait time.Duration)
}

type tokenBucket struct {
	limiter *rate.Limiter
	now     func() time.Time
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &tokenBucket{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		now:     time.Now,
	}
}

func (b *tokenBucket) Allow() (bool, time.Duration) {
	if b == nil || b.limiter == nil {
		return true, 0
	}

	now := b.now()
	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// retryAfterSeconds rounds wait up to whole seconds, never below one.
func retryAfterSeconds(wait time.Duration) int {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func rateLimitMiddleware(logger *zap.Logger, limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := limiter.Allow()
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := retryAfterSeconds(wait)
		logger.Warn("rate limit exceeded",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("retry_after_s", retryAfter),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
