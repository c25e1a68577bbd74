package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/llun/fitfeed/internal/logger"
)

// Logger returns a Gin middleware that injects a request-scoped logger
// into the request context and logs request completion.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := uuid.New().String()

		reqLogger := log.WithFields(logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		})
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))
		c.Header("X-Request-ID", requestID)

		c.Next()

		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		reqLogger.WithFields(logger.Fields{
			logger.FieldStatus:     c.Writer.Status(),
			logger.FieldDurationMs: time.Since(start).Milliseconds(),
			"method":               c.Request.Method,
			"path":                 fullPath,
			"client_ip":            c.ClientIP(),
		}).Info("Request completed")
	}
}

// GetLogger extracts the request-scoped logger from the Gin context.
func GetLogger(c *gin.Context) *logger.Logger {
	return logger.FromContext(c.Request.Context())
}
