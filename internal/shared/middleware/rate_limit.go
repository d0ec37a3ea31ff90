package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"catalog-backend/internal/shared/response"
)

// RateLimiter hands out one token bucket per caller. Authenticated callers
// are keyed by user id, anonymous ones by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows reqPerMin requests per minute per caller with the
// given burst.
func NewRateLimiter(reqPerMin, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(reqPerMin)),
		burst:    burst,
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Handler rejects callers over their budget with 429.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := c.Get(ContextUserID); ok {
			if uid, ok := id.(uuid.UUID); ok {
				key = "user:" + uid.String()
			}
		}

		limiter := l.get(key)
		if !limiter.Allow() {
			retry := time.Duration(float64(time.Second) / float64(limiter.Limit()))
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			response.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit is NewRateLimiter(reqPerMin, burst).Handler(). A non-positive
// reqPerMin disables limiting.
func RateLimit(reqPerMin, burst int) gin.HandlerFunc {
	if reqPerMin <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return NewRateLimiter(reqPerMin, burst).Handler()
}
