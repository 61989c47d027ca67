package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/devboard-io/devboard/pkg/logger"
)

const maxStackTraceSize = 4096

// RecoveryMiddleware returns a Gin middleware for panic recovery with logging
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)

				stack := debug.Stack()
				if len(stack) > maxStackTraceSize {
					stack = stack[:maxStackTraceSize]
				}

				fields := []logger.Field{
					logger.Any("panic", err),
					logger.Method(c.Request.Method),
					logger.Path(c.Request.URL.Path),
					logger.ClientIP(c.ClientIP()),
					logger.ByteString("stacktrace", stack),
				}
				if requestID != "" {
					fields = append(fields, logger.RequestID(requestID))
				}

				logger.Get().Error("Panic recovered", fields...)

				if c.IsAborted() {
					return
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal_server_error",
					"message":    "An unexpected error occurred",
					"request_id": requestID,
				})
			}
		}()

		c.Next()
	}
}
