package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/edustack/assess-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-IP token bucket. It guards the login endpoint against
// credential stuffing; the bucket refills in whole intervals.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int
	interval time.Duration
}

type bucket struct {
	tokens   int
	refilled time.Time
}

// NewRateLimiter allows rate requests per interval for each client IP.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}
	go rl.reap()
	return rl
}

// Middleware enforces the limit, answering 429 with a typed code when a
// client runs dry.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.rate, refilled: time.Now()}
		rl.buckets[ip] = b
	}

	if intervals := int(time.Since(b.refilled) / rl.interval); intervals > 0 {
		b.tokens += intervals * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.refilled = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// reap drops buckets idle long enough to be full again anyway.
func (rl *RateLimiter) reap() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if time.Since(b.refilled) > 3*rl.interval {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
