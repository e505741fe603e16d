package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxLoggedBody caps how much of a request body ends up in the log.
const maxLoggedBody = 2048

// LoggerConfig controls request logging.
type LoggerConfig struct {
	// SkipPaths are not logged at all (health probes).
	SkipPaths []string
	// RedactPrefixes are paths whose bodies are never logged.
	RedactPrefixes []string
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		SkipPaths:      []string{"/api/v1/health/live", "/api/v1/health/ready"},
		RedactPrefixes: []string{"/api/v1/auth"},
	}
}

// Logger returns a middleware that logs HTTP requests. It expects RequestID
// to run first.
func Logger(config LoggerConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		raw := c.Request.URL.RawQuery
		method := c.Request.Method

		var requestBody []byte
		if method != http.MethodGet && c.Request.Body != nil && !redacted(path, config.RedactPrefixes) {
			body := c.Request.Body
			requestBody, _ = io.ReadAll(io.LimitReader(body, maxLoggedBody))
			c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(requestBody), body), body}
		}

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		l := requestLogger(c)
		var event *zerolog.Event
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			event, msg = l.Error(), "Server error"
		case statusCode >= 400:
			event, msg = l.Warn(), "Client error"
		default:
			event = l.Info()
		}

		event = event.
			Str("query", raw).
			Str("ip", c.ClientIP()).
			Int("status", statusCode).
			Dur("duration", latency).
			Str("user_agent", c.Request.UserAgent())
		if len(requestBody) > 0 {
			event = event.Str("request", string(requestBody))
		}
		event.Msg(msg)
	}
}

// readCloser replays the logged head of a body before the rest of it.
type readCloser struct {
	io.Reader
	io.Closer
}

func redacted(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
