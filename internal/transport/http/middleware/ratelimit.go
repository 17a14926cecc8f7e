package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "massage-booking-api/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		resp.Abort(c, http.StatusTooManyRequests, "too many requests")
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// IPLimiter 每 IP 一个桶，访问时顺带清理长时间未出现的 IP
type IPLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	burst   int
	ttl     time.Duration
	swept   time.Time
	now     func() time.Time
}

func NewIPLimiter(rps rate.Limit, burst int) *IPLimiter {
	return &IPLimiter{
		buckets: make(map[string]*bucket),
		r:       rps,
		burst:   burst,
		ttl:     3 * time.Minute,
		now:     time.Now,
	}
}

func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.swept) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.ttl {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.r, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func (l *IPLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimitPerIP 每 IP 限速（登录、注册等接口）
func RateLimitPerIP(l *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		resp.Abort(c, http.StatusTooManyRequests, "too many requests")
	}
}
