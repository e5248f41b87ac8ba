package middleware

import (
	"net/http"
	"socialnet/internal/logger"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per client IP kept in Redis.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window}
}

// Handler limits mutating requests. A nil limiter, a non-positive limit or
// a Redis failure lets the request through.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rdb == nil || l.limit <= 0 || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		secs := max(int64(l.window/time.Second), 1)
		window := time.Now().Unix() / secs
		key := "rl:" + c.ClientIP() + ":" + strconv.FormatInt(window, 10)

		ctx := c.Request.Context()
		pipe := l.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn.Printf("rate limiter: %v", err)
			c.Next()
			return
		}

		n := incr.Val()
		c.Header("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(l.limit-n, 0), 10))
		if n > l.limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}
