package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saedabdu/tickerproxy/internal/api"
	"github.com/saedabdu/tickerproxy/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id and stores a request-scoped
// logger carrying it in the request context
func RequestIDMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		ctx := logger.ContextWithLogger(c.Request.Context(), log.With("request_id", id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LoggerMiddleware logs HTTP request details.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log := logger.FromContext(c.Request.Context())
		keyvals := []any{
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"status_code", c.Writer.Status(),
			"body_size", c.Writer.Size(),
			"path", path,
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			keyvals = append(keyvals, "error", msg)
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("Request completed", keyvals...)
		case status >= http.StatusBadRequest:
			log.Warn("Request completed", keyvals...)
		default:
			log.Info("Request completed", keyvals...)
		}
	}
}

// RecoveryMiddleware turns a panicking handler into a 500 response.
// The panic goes to the request logger instead of gin's stderr writer.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Error("Recovered from panic",
			"path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{
			Detail: fmt.Sprintf("An internal server error occurred: %v", recovered),
		})
	})
}
