// Command faker serves the mock BPJS and SATUSEHAT endpoints the API calls in
// api data mode.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/puskesmas-merdeka/simpus-api/internal/config"
	"github.com/puskesmas-merdeka/simpus-api/internal/faker"
	"github.com/puskesmas-merdeka/simpus-api/internal/middleware"
	"github.com/puskesmas-merdeka/simpus-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Server.LogLevel),
		TimeFormat: time.RFC3339,
		Console:    !cfg.IsProduction(),
	})
	l.SetGlobal()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(middleware.DefaultLoggerConfig()),
		middleware.CORS(middleware.DefaultCORSConfig()),
	)
	faker.NewHandler(faker.NewSource(), *l.Zerolog()).RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Faker.Port),
		Handler: engine,
	}

	go func() {
		log.Info().Int("port", cfg.Faker.Port).Msg("mock BPJS and SATUSEHAT server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down mock server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("mock server forced to shutdown")
	}
}
