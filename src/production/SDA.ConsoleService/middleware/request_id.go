package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
)

// Key types for request context
type contextKey string

const (
	RequestIDContextKey contextKey = "request_id"
	SessionContextKey   contextKey = "session"

	RequestIDHeader = "X-Request-ID"
)

// RequestID tags every request with an id, taken from the X-Request-ID header when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(string(RequestIDContextKey), id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestIDFromGinContext returns the id set by RequestID
func GetRequestIDFromGinContext(c *gin.Context) string {
	id, _ := c.Get(string(RequestIDContextKey))
	s, _ := id.(string)
	return s
}

// RequestLogger logs one line per request once it has been served
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Logger.Info()
		if status >= 500 {
			event = log.Logger.Error()
		} else if status >= 400 {
			event = log.Logger.Warn()
		}
		event.
			Str("request_id", GetRequestIDFromGinContext(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
