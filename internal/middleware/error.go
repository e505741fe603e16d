package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

// ErrorHandler answers with the last error a handler attached via c.Error,
// unless the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		l := requestLogger(c)
		for _, e := range c.Errors {
			l.Debug().Err(e.Err).Uint64("type", uint64(e.Type)).Msg("Handler error")
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, c.Errors.Last().Err)
		}
	}
}
