package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig lets the browser front end read the request id and the
// export file name.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderXRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// CORS answers preflights itself. Requests from an origin outside
// AllowOrigins get no CORS headers, and their preflights are refused.
func CORS(config CORSConfig) gin.HandlerFunc {
	anyOrigin := false
	origins := make(map[string]struct{}, len(config.AllowOrigins))
	for _, o := range config.AllowOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[o] = struct{}{}
	}
	methods := strings.Join(config.AllowMethods, ", ")
	headers := strings.Join(config.AllowHeaders, ", ")
	expose := strings.Join(config.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	// a credentialed response may not carry the "*" wildcard
	allowed := func(origin string) string {
		if origin == "" {
			return "*"
		}
		if _, ok := origins[origin]; ok {
			return origin
		}
		if anyOrigin {
			if config.AllowCredentials {
				return origin
			}
			return "*"
		}
		return ""
	}

	return func(c *gin.Context) {
		origin := allowed(c.GetHeader("Origin"))
		preflight := c.Request.Method == http.MethodOptions

		if origin == "" {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Expose-Headers", expose)
		h.Set("Access-Control-Max-Age", maxAge)
		if config.AllowCredentials {
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if preflight {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
