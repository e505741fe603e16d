package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/handler/prometheus"
	"github.com/puskesmas-merdeka/simpus-api/internal/middleware"
)

// APIVersion is echoed in the X-API-Version header.
const APIVersion = "1.0"

// Handlers are the resource handlers mounted under /api/v1. Health and Auth
// are public (Auth guards its own session routes); the rest require a
// session.
type Handlers struct {
	Health    handler.Routes
	Auth      handler.Routes
	Patient   handler.Routes
	Encounter handler.Routes
	Lab       handler.Routes
	Bridging  handler.Routes
	Audit     handler.Routes
	Report    handler.Routes
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *prometheus.Handler
}

type RouterConfig struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
	Timeout    time.Duration
	Production bool
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	metrics *prometheus.Handler,
	config RouterConfig,
) *Router {
	if config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  metrics,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(middleware.DefaultLoggerConfig()),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		metrics.Middleware(),
		middleware.Timeout(config.Timeout),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(config.Production)),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", APIVersion)
		c.Next()
	})

	r.handlers.Health.RegisterRoutes(api)
	r.handlers.Auth.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(
		r.auth.Authenticate(),
		middleware.Cache(middleware.DefaultCacheConfig()),
	)
	for _, h := range []handler.Routes{
		r.handlers.Patient,
		r.handlers.Encounter,
		r.handlers.Lab,
		r.handlers.Bridging,
		r.handlers.Audit,
		r.handlers.Report,
	} {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
