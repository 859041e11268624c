package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
)

// AuthRateLimitMiddleware 按客户端 IP 限制认证接口的请求频率，perMinute <= 0 时不限流
func AuthRateLimitMiddleware(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := httprate.NewRateLimiter(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)

	return func(c *gin.Context) {
		key, err := httprate.KeyByIP(c.Request)
		if err != nil {
			c.Next()
			return
		}
		if limiter.OnLimit(c.Writer, c.Request, key) {
			logrus.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"path":      c.Request.URL.Path,
			}).Warn("auth rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, APIError{
				Code:    ErrCodeTooManyRequests,
				Message: "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
