package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

type SizeLimitConfig struct {
	MaxBodySize   int64
	MaxHeaderSize int
	SkipPaths     []string
}

// DefaultSizeLimitConfig fits the largest payload the API takes, a lab
// result batch, with room to spare.
func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20,
		MaxHeaderSize: 16 << 10,
	}
}

// SizeLimit rejects a declared oversize body or header block with 413 and
// caps the body reader, so chunked uploads stop at MaxBodySize too.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		switch {
		case c.Request.ContentLength > config.MaxBodySize:
			tooLarge(c, fmt.Sprintf("body exceeds %d bytes", config.MaxBodySize))
			return
		case headerSize(c.Request.Header) > config.MaxHeaderSize:
			tooLarge(c, fmt.Sprintf("headers exceed %d bytes", config.MaxHeaderSize))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		}
		c.Next()
	}
}

func headerSize(h http.Header) int {
	n := 0
	for name, values := range h {
		for _, v := range values {
			n += len(name) + len(v)
		}
	}
	return n
}

func tooLarge(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.Response{
		Error: &httputil.Error{
			Code:    http.StatusRequestEntityTooLarge,
			Message: "request too large: " + msg,
		},
	})
}
