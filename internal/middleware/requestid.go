package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/puskesmas-merdeka/simpus-api/pkg/logger"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// maxRequestIDLen bounds ids taken from the client header.
const maxRequestIDLen = 64

// RequestID reuses the caller's X-Request-ID or mints one, and puts it on the
// gin context, the response and the request context for service logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey{}, rid))
		c.Next()
	}
}

// requestLogger tags the global logger with the request id, route and, once
// authenticated, the session user.
func requestLogger(c *gin.Context) zerolog.Logger {
	ctx := log.With().
		Str("request_id", c.GetString(ContextRequestID)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
	if user, ok := CurrentUser(c); ok {
		ctx = ctx.Str("user_id", user.ID).Str("role", string(user.Role))
	}
	return ctx.Logger()
}
