package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

var quietPaths = map[string]bool{
	"/api/v1/health": true,
	"/metrics":       true,
}

// RequestLogger writes one access log line per request. Lines carry the
// matched route and the lease or payment the request targets, so a payment's
// history can be followed across pricing, invoicing and cancel calls.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if quietPaths[path] {
			return
		}

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		}
		if raw := c.Request.URL.RawQuery; raw != "" {
			attrs = append(attrs, slog.String("query", raw))
		}
		for _, name := range []string{"lease_id", "payment_id"} {
			if id := c.Param(name); id != "" {
				attrs = append(attrs, slog.String(name, id))
			}
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			attrs = append(attrs, slog.String("error", msg))
		}

		log := logger.FromContext(c.Request.Context())
		switch {
		case status >= 500:
			log.Error("Request", attrs...)
		case status >= 400:
			log.Warn("Request", attrs...)
		default:
			log.Info("Request", attrs...)
		}
	}
}
