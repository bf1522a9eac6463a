package middleware

import (
	"strconv"
	"time"

	"notes-marketplace-api/pkg/logging"
	"notes-marketplace-api/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs one structured line per request and records its latency
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(duration.Seconds())

		if route == "/metrics" || route == "/health" {
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()),
		}
		if adminID, exists := c.Get("admin_id"); exists {
			fields = append(fields, zap.Any("admin_id", adminID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logging.Logger.Info("HTTP Request", fields...)
	}
}
