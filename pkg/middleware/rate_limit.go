package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/catatan/catatan/pkg/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limitKey picks the rate-limit bucket: the authenticated owner when
// AuthMiddleware ran first, otherwise the client IP.
func limitKey(c *gin.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return "owner:" + id.ID
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func rejectRateLimited(c *gin.Context, limiter, retryAfter string) {
	c.Header("Retry-After", retryAfter)
	metrics.RateLimitRejected.WithLabelValues(limiter).Inc()
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

// bucketIdle is the minimum time a key must go unseen before its bucket is
// dropped. Dropped keys come back with a full bucket, so the idle time is
// never shorter than a full refill.
const bucketIdle = 10 * time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterStore holds one token bucket per key and sweeps idle keys at most
// once per idle period, so memory follows the keys active in that period.
type limiterStore struct {
	rps   rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiterStore(rps float64, burst int, now func() time.Time) *limiterStore {
	idle := bucketIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &limiterStore{
		rps:       rate.Limit(rps),
		burst:     burst,
		idle:      idle,
		now:       now,
		buckets:   map[string]*bucket{},
		lastSweep: now(),
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	// a non-refilling bucket (rps <= 0) is a hard cap and is never dropped
	if s.rps > 0 && now.Sub(s.lastSweep) >= s.idle {
		for k, b := range s.buckets {
			if now.Sub(b.seen) >= s.idle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// RateLimitMiddleware enforces an in-process token bucket per key.
// rps is the refill rate, burst the bucket size.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst, time.Now)
	return func(c *gin.Context) {
		if !store.allow(limitKey(c)) {
			rejectRateLimited(c, "memory", "1")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
