package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

// Recovery turns a handler panic into a 500 envelope. A panic after the
// response started only gets logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			l := requestLogger(c)
			l.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			httputil.RespondWithError(c, apperrors.NewInternal(fmt.Errorf("panic: %v", rec)))
		}()
		c.Next()
	}
}
