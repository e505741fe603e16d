// Package worker holds the background consumers that run beside the API.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/pkg/messaging"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

// AuditEvent is an audit entry as it travels on the broker.
type AuditEvent struct {
	Type    string          `json:"type"`
	Payload *model.AuditLog `json:"payload"`
}

// HandlerFunc is called for every decoded event.
type HandlerFunc func(ctx context.Context, event *AuditEvent) error

// AuditListener follows the audit channel. Messages are delivered at most
// once; a failed handler is logged and the message dropped.
type AuditListener struct {
	broker  messaging.Broker
	channel string
	handle  HandlerFunc
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewAuditListener(broker messaging.Broker, channel string, handle HandlerFunc, logger zerolog.Logger, m *metrics.Metrics) *AuditListener {
	if m == nil {
		m = metrics.NewMetrics("simpus", nil)
	}
	return &AuditListener{
		broker:  broker,
		channel: channel,
		handle:  handle,
		logger:  logger.With().Str("channel", channel).Logger(),
		metrics: m,
	}
}

// Start blocks until ctx is done or the subscription closes.
func (l *AuditListener) Start(ctx context.Context) error {
	messages, err := l.broker.Subscribe(ctx, l.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	l.logger.Info().Msg("Audit listener started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("Audit listener shutting down")
			return nil
		case raw, ok := <-messages:
			if !ok {
				l.logger.Info().Msg("Audit subscription closed")
				return nil
			}
			l.process(ctx, raw)
		}
	}
}

func (l *AuditListener) process(ctx context.Context, raw []byte) {
	var event AuditEvent
	if err := json.Unmarshal(raw, &event); err != nil || event.Payload == nil {
		l.metrics.EventsConsumed.WithLabelValues("unknown", "invalid").Inc()
		l.logger.Warn().Err(err).Bytes("message", raw).Msg("Dropping malformed audit event")
		return
	}

	if err := l.handle(ctx, &event); err != nil {
		l.metrics.EventsConsumed.WithLabelValues(event.Type, "failed").Inc()
		l.logger.Error().Err(err).Str("type", event.Type).Msg("Error handling audit event")
		return
	}
	l.metrics.EventsConsumed.WithLabelValues(event.Type, "handled").Inc()
}

// LogEvent is the default handler: one structured log line per entry.
func LogEvent(logger zerolog.Logger) HandlerFunc {
	return func(_ context.Context, event *AuditEvent) error {
		entry := event.Payload
		logger.Info().
			Str("type", event.Type).
			Str("user_id", entry.UserID).
			Str("entity", entry.Entity).
			Str("entity_id", entry.EntityID).
			Time("timestamp", entry.Timestamp).
			Msg("audit")
		return nil
	}
}
