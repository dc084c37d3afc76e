package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger returns a Gin middleware that logs each request with zap.
// 5xx responses are logged at warn level.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("trace_id", GetTraceID(c)),
			zap.String("client_ip", c.ClientIP()),
		}
		if id := GetProfileID(c); id != uuid.Nil {
			fields = append(fields, zap.Stringer("profile_id", id))
		}
		if status >= 500 {
			log.Warn("http", fields...)
			return
		}
		log.Info("http", fields...)
	}
}
