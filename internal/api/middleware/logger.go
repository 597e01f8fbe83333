package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/memeverse/internal/logger"
)

const (
	// RequestIDHeader carries the request ID back to the client.
	RequestIDHeader = "X-Request-ID"
)

// Logger returns a Gin middleware that injects a request-scoped logger.
// Parameters:
//   - log: base logger to enrich with request fields.
//
// Returns:
//   - gin.HandlerFunc: middleware handler.
func Logger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		reqLog := log.WithFields(logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		})
		ctx := reqLog.WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		// user_id, when logged in, is already on the context logger.
		entry := logger.With(logger.Fields{logger.FieldStatus: c.Writer.Status()}).
			WithDuration(time.Since(start).Milliseconds()).
			WithSize(c.Writer.Size())
		if len(c.Errors) > 0 {
			entry.Warn(c.Request.Context(), "Request failed: method=%s, path=%s, errors=%s", c.Request.Method, path, c.Errors.String())
			return
		}
		entry.Info(c.Request.Context(), "Request completed: method=%s, path=%s", c.Request.Method, path)
	}
}
