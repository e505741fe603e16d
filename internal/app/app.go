// Package app assembles the store, gateway, broker, services and HTTP router
// from a loaded configuration. Commands share it so the server, the export
// command and the in-process API tests run the same wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/puskesmas-merdeka/simpus-api/internal/config"
	"github.com/puskesmas-merdeka/simpus-api/internal/faker"
	audithandler "github.com/puskesmas-merdeka/simpus-api/internal/handler/audit"
	authhandler "github.com/puskesmas-merdeka/simpus-api/internal/handler/auth"
	bridginghandler "github.com/puskesmas-merdeka/simpus-api/internal/handler/bridging"
	encounterhandler "github.com/puskesmas-merdeka/simpus-api/internal/handler/encounter"
	"github.com/puskesmas-merdeka/simpus-api/internal/handler/health"
	labhandler "github.com/puskesmas-merdeka/simpus-api/internal/handler/lab"
	patienthandler "github.com/puskesmas-merdeka/simpus-api/internal/handler/patient"
	"github.com/puskesmas-merdeka/simpus-api/internal/handler/prometheus"
	reporthandler "github.com/puskesmas-merdeka/simpus-api/internal/handler/report"
	"github.com/puskesmas-merdeka/simpus-api/internal/integration"
	"github.com/puskesmas-merdeka/simpus-api/internal/middleware"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/memory"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/postgres"
	"github.com/puskesmas-merdeka/simpus-api/internal/router"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/auth"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/bridging"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/encounter"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/lab"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/patient"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/report"
	jwtauth "github.com/puskesmas-merdeka/simpus-api/pkg/auth"
	"github.com/puskesmas-merdeka/simpus-api/pkg/messaging"
	"github.com/puskesmas-merdeka/simpus-api/pkg/messaging/redis"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

// Namespace prefixes every exported metric.
const Namespace = "simpus"

// Backend is everything that talks to the outside world. Build takes it
// ready-made so tests can pass an in-memory store and the local gateway.
type Backend struct {
	Store   *repository.Store
	DB      *sqlx.DB
	Gateway integration.Gateway
	Broker  messaging.Broker
}

type Services struct {
	Audit      *audit.Service
	Auth       *auth.Service
	Patients   *patient.Service
	Encounters *encounter.Service
	Lab        *lab.Service
	Bridging   *bridging.Service
	Reports    *report.Service
}

type App struct {
	Config   *config.Config
	Backend  Backend
	Metrics  *metrics.Metrics
	HTTP     *prometheus.Handler
	Services Services
	Router   *router.Router
}

// New opens the backend selected by cfg.DataMode and builds the app on top
// of it. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	httpMetrics := prometheus.New(Namespace)
	m := metrics.NewMetrics(Namespace, httpMetrics.Registry())

	backend, err := OpenBackend(ctx, cfg, m, log)
	if err != nil {
		return nil, err
	}
	return Build(cfg, backend, httpMetrics, m), nil
}

// OpenBackend picks the seeded memory store and in-process generators in mock
// mode, Postgres and the mock server over HTTP in api mode. The broker is
// Redis when a URL is configured.
func OpenBackend(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (Backend, error) {
	var b Backend

	switch cfg.DataMode {
	case config.DataModeAPI:
		db, err := postgres.NewDB(cfg.Database.DSN())
		if err != nil {
			return b, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return b, err
		}
		b.DB = db
		b.Store = postgres.Repositories(db, m)
		b.Gateway = integration.NewClient(cfg.Faker.BaseURL, cfg.Faker.Timeout)
	default:
		store, err := memory.NewSeeded(
			memory.WithLatency(cfg.Store.Latency),
			memory.WithMetrics(m),
		)
		if err != nil {
			return b, err
		}
		b.Store = store.Repositories()
		b.Gateway = integration.NewLocal(faker.NewSource())
	}
	b.Gateway = integration.WithMetrics(b.Gateway, m)

	b.Broker = messaging.NopBroker{}
	if cfg.Redis.URL != "" {
		broker, err := redis.Connect(ctx, redis.DefaultOptions(cfg.Redis.URL), log)
		if err != nil {
			b.Close()
			return b, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.Broker = broker
	}

	log.Info().
		Str("data_mode", cfg.DataMode).
		Bool("redis", cfg.Redis.URL != "").
		Msg("backend ready")

	return b, nil
}

func (b Backend) Close() error {
	var errs []error
	if b.Broker != nil {
		errs = append(errs, b.Broker.Close())
	}
	if b.DB != nil {
		errs = append(errs, b.DB.Close())
	}
	return errors.Join(errs...)
}

// NewServices wires the services over a backend.
func NewServices(cfg *config.Config, b Backend, m *metrics.Metrics) Services {
	auditor := audit.NewService(b.Store.AuditLogs, b.Broker, cfg.Redis.Channel, m)
	expiry := time.Duration(cfg.JWT.ExpiryHours) * time.Hour

	return Services{
		Audit:      auditor,
		Auth:       auth.NewService(jwtauth.NewJWTService(cfg.JWT.Secret, expiry), auditor),
		Patients:   patient.NewService(b.Store.Patients, b.Store.Encounters, auditor),
		Encounters: encounter.NewService(b.Store, auditor),
		Lab:        lab.NewService(b.Store, auditor),
		Bridging:   bridging.NewService(b.Gateway, b.Store, auditor),
		Reports:    report.NewService(b.Store, auditor, cfg.Facility.Name),
	}
}

// Build wires services, handlers and the router. Routes are registered.
func Build(cfg *config.Config, b Backend, httpMetrics *prometheus.Handler, m *metrics.Metrics) *App {
	svc := NewServices(cfg, b, m)

	authMW := middleware.NewAuthMiddleware(svc.Auth)
	editor := authMW.RequireClinicalEditor()

	// a nil *sqlx.DB must not reach the interface
	var pinger health.Pinger
	if b.DB != nil {
		pinger = b.DB
	}

	handlers := router.Handlers{
		Health:    health.NewHandler(pinger, httpMetrics.Handler()),
		Auth:      authhandler.NewHandler(svc.Auth, authMW.Authenticate()),
		Patient:   patienthandler.NewHandler(svc.Patients, editor),
		Encounter: encounterhandler.NewHandler(svc.Encounters, editor),
		Lab:       labhandler.NewHandler(svc.Lab),
		Bridging:  bridginghandler.NewHandler(svc.Bridging, editor),
		Audit:     audithandler.NewHandler(svc.Audit),
		Report:    reporthandler.NewHandler(svc.Reports),
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(authMW, handlers, httpMetrics, router.RouterConfig{
		RateLimit:  rate.Limit(cfg.RateLimit.RPS),
		RateBurst:  cfg.RateLimit.Burst,
		CORSConfig: cors,
		Timeout:    cfg.Server.WriteTimeout,
		Production: cfg.IsProduction(),
	})
	r.Setup()

	return &App{
		Config:   cfg,
		Backend:  b,
		Metrics:  m,
		HTTP:     httpMetrics,
		Services: svc,
		Router:   r,
	}
}

func (a *App) Close() error {
	return a.Backend.Close()
}
