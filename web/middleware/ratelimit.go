package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/oplog/oplog/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	KeyFunc           func(c *gin.Context) string
	// Message renders the 429 body.
	Message func(c *gin.Context) string
}

// DefaultRateLimitConfig limits credential endpoints per client IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		BurstSize:         5,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		Message: func(*gin.Context) string {
			return "Rate limit exceeded. Please try again later."
		},
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	// drop idle visitors
	for k, other := range s.visitors {
		if now.Sub(other.lastSeen) > 10*time.Minute {
			delete(s.visitors, k)
		}
	}
	return v.limiter
}

// RateLimitMiddleware creates rate limiting middleware. Keys are the client
// key plus the request path, so each endpoint has its own budget.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	set := &limiterSet{
		visitors: map[string]*visitor{},
		limit:    rate.Limit(float64(config.RequestsPerMinute) / 60),
		burst:    config.BurstSize,
		now:      time.Now,
	}
	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		if !set.get(key + ":" + c.Request.URL.Path).Allow() {
			logger.Warningf("Rate limit exceeded for %s on %s", key, c.Request.URL.Path)
			c.Header("Retry-After", strconv.Itoa(60/max(config.RequestsPerMinute, 1)+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     config.Message(c),
			})
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Next()
	}
}
