package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityConfig controls the response hardening headers.
type SecurityConfig struct {
	// HSTS is sent only when positive; leave zero unless served over TLS.
	HSTS time.Duration
	// ReferrerPolicy defaults to no-referrer since query strings may carry
	// a NIK or BPJS number.
	ReferrerPolicy string
}

func DefaultSecurityConfig(production bool) SecurityConfig {
	cfg := SecurityConfig{ReferrerPolicy: "no-referrer"}
	if production {
		cfg.HSTS = 365 * 24 * time.Hour
	}
	return cfg
}

// SecurityHeaders marks every response as a non-renderable API answer.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	headers := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Cross-Origin-Resource-Policy", "same-site"},
	}
	if config.ReferrerPolicy != "" {
		headers = append(headers, [2]string{"Referrer-Policy", config.ReferrerPolicy})
	}
	if config.HSTS > 0 {
		headers = append(headers, [2]string{
			"Strict-Transport-Security",
			"max-age=" + strconv.Itoa(int(config.HSTS.Seconds())) + "; includeSubDomains",
		})
	}

	return func(c *gin.Context) {
		for _, h := range headers {
			c.Header(h[0], h[1])
		}
		c.Next()
	}
}
