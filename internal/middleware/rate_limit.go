package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dentallab/backend/pkg/logger"
	pkgredis "github.com/dentallab/backend/pkg/redis"
	"github.com/dentallab/backend/pkg/response"
)

// RateLimit applies a fixed-window per-IP counter in Redis. It fails
// open: when Redis is unreachable the request is allowed through, since
// the limiter protects the auth endpoints but is not itself critical.
func RateLimit(rdb *pkgredis.Client, limit int, window time.Duration, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(c.Request.Context(), key, window).Err(); err != nil {
				logger.Warn("rate limiter expire failed", zap.String("scope", scope), zap.Error(err))
			}
		}

		if count > int64(limit) {
			response.AbortError(c, 429, "RATE_LIMITED", "Too many requests, slow down")
			return
		}
		c.Next()
	}
}
