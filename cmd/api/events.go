package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/puskesmas-merdeka/simpus-api/internal/app"
	"github.com/puskesmas-merdeka/simpus-api/internal/worker"
	"github.com/puskesmas-merdeka/simpus-api/pkg/messaging/redis"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

func eventsCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Follow audit events published by the API servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if cfg.Redis.URL == "" {
				return errors.New("redis.url is not configured")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			broker, err := redis.Connect(ctx, redis.DefaultOptions(cfg.Redis.URL), log)
			if err != nil {
				return err
			}
			defer broker.Close()

			listener := worker.NewAuditListener(
				broker,
				cfg.Redis.Channel,
				worker.LogEvent(log),
				log,
				metrics.NewMetrics(app.Namespace, nil),
			)
			return listener.Start(ctx)
		},
	}
}
