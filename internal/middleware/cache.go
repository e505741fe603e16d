package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheRule lets GETs under Prefix be reused for MaxAge. Only reference data
// qualifies; patient records are always revalidated.
type CacheRule struct {
	Prefix string
	MaxAge time.Duration
}

type CacheConfig struct {
	Rules []CacheRule
	// NoStorePrefixes are downloads that must never be written to disk by a
	// browser cache (report and audit exports).
	NoStorePrefixes []string
	Vary            []string
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Rules: []CacheRule{
			{Prefix: "/api/v1/icd10", MaxAge: 10 * time.Minute},
			{Prefix: "/api/v1/reports/poli-list", MaxAge: time.Minute},
		},
		NoStorePrefixes: []string{
			"/api/v1/reports/export",
			"/api/v1/audit-logs/export",
		},
		Vary: []string{"Accept", "Authorization"},
	}
}

// Cache sets Cache-Control on session routes. Every response is private;
// writes are no-store.
func Cache(config CacheConfig) gin.HandlerFunc {
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		c.Header("Cache-Control", cacheControl(config, c.Request.Method, c.Request.URL.Path))
		if vary != "" {
			c.Writer.Header().Add("Vary", vary)
		}
		c.Next()
	}
}

func cacheControl(config CacheConfig, method, path string) string {
	if method != http.MethodGet {
		return "no-store"
	}
	for _, p := range config.NoStorePrefixes {
		if strings.HasPrefix(path, p) {
			return "private, no-store"
		}
	}
	for _, rule := range config.Rules {
		if strings.HasPrefix(path, rule.Prefix) {
			return "private, max-age=" + strconv.Itoa(int(rule.MaxAge.Seconds()))
		}
	}
	return "private, no-cache"
}
