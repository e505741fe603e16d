package audit

import (
	"context"
	"fmt"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/pkg/auth"
	"github.com/puskesmas-merdeka/simpus-api/pkg/logger"
	"github.com/puskesmas-merdeka/simpus-api/pkg/messaging"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

// DefaultChannel is where audit events are published when none is configured.
const DefaultChannel = "simpus.audit"

// Logger is what the domain services record their actions through.
type Logger interface {
	Log(ctx context.Context, action, entity, entityID string, meta model.JSONMap)
}

type Service struct {
	repo    repository.AuditRepository
	broker  messaging.Broker
	channel string
	metrics *metrics.Metrics
}

func NewService(repo repository.AuditRepository, broker messaging.Broker, channel string, m *metrics.Metrics) *Service {
	if broker == nil {
		broker = messaging.NopBroker{}
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &Service{
		repo:    repo,
		broker:  broker,
		channel: channel,
		metrics: m,
	}
}

// Record appends an entry attributed to the session user on ctx and then
// publishes it. Publishing is fire-once; a failed publish is logged and
// counted but does not fail the call.
func (s *Service) Record(ctx context.Context, action, entity, entityID string, meta model.JSONMap) (*model.AuditLog, error) {
	entry := &model.AuditLog{
		UserID:   auth.ActorID(ctx),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	}
	if entry.Meta == nil {
		entry.Meta = model.JSONMap{}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}

	s.publish(ctx, entry)
	return entry, nil
}

// Log is Record without the result. Audit failures never fail the action
// being audited.
func (s *Service) Log(ctx context.Context, action, entity, entityID string, meta model.JSONMap) {
	if _, err := s.Record(ctx, action, entity, entityID, meta); err != nil {
		logger.FromContext(ctx).Error().
			Err(err).
			Str("action", action).
			Str("entity", entity).
			Str("entity_id", entityID).
			Msg("Failed to write audit log")
	}
}

func (s *Service) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > repository.AuditLogLimit {
		limit = repository.AuditLogLimit
	}
	logs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (s *Service) publish(ctx context.Context, entry *model.AuditLog) {
	msg := messaging.Message{
		Type:    "audit." + entry.Action,
		Payload: entry,
	}

	status := "published"
	if err := s.broker.Publish(ctx, s.channel, msg); err != nil {
		status = "failed"
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("channel", s.channel).
			Str("type", msg.Type).
			Msg("Failed to publish audit event")
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(status).Inc()
	}
}
