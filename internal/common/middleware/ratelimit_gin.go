package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RateLimitHandler 把 RateLimiter 适配为 gin 中间件。
// 超出限额的请求直接返回 429，不进入业务处理。
func RateLimitHandler(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
