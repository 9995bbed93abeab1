package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jengzang/heatmap-backend-go/internal/metrics"
)

// Logger middleware logs HTTP requests and counts them by route
func Logger(logger log.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(statusCode)).Inc()

		lvl := level.Info
		if statusCode >= 500 {
			lvl = level.Error
		} else if statusCode >= 400 {
			lvl = level.Warn
		}
		keyvals := []interface{}{
			"msg", "request",
			"method", c.Request.Method,
			"path", path,
			"client_ip", c.ClientIP(),
			"status", statusCode,
			"latency", latency,
		}
		if len(c.Errors) > 0 {
			keyvals = append(keyvals, "err", c.Errors.String())
		}
		lvl(logger).Log(keyvals...)
	}
}
