package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
	"github.com/noah-isme/sma-portal/pkg/response"
)

// TokenBucket is an in-memory per-client limiter refilled at a fixed rate per minute.
type TokenBucket struct {
	capacity int
	rate     int
	now      func() time.Time

	mu        sync.Mutex
	state     map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket creates a limiter allowing perMinute requests per client, bursting up to
// capacity. A non-positive capacity defaults to perMinute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// Middleware enforces the limit per client IP. A zero rate disables limiting.
func (l *TokenBucket) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rate <= 0 {
			c.Next()
			return
		}
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}
		if !l.Allow(key) {
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many login attempts, try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Allow takes one token for key.
func (l *TokenBucket) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets that have refilled to capacity since their last use; a full bucket
// behaves the same as a missing one. Runs at most once a minute.
func (l *TokenBucket) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for key, b := range l.state {
		if b.tokens+int(now.Sub(b.last).Minutes()*float64(l.rate)) >= l.capacity {
			delete(l.state, key)
		}
	}
}

// Len reports how many clients currently hold a bucket.
func (l *TokenBucket) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state)
}
