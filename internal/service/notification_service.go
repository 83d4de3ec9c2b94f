package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-planner/internal/config"
	"github.com/spec-kit/workforce-planner/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventScheduleSubmitted, n.handleScheduleSubmitted)
	n.dispatcher.Subscribe(events.EventLeaveRequested, n.handleLeaveRequested)
	n.dispatcher.Subscribe(events.EventIncidentReported, n.handleIncidentReported)
	n.dispatcher.Subscribe(events.EventTeamDeleted, n.handleCascadeCompleted)
	n.dispatcher.Subscribe(events.EventOrganizationDeleted, n.handleCascadeCompleted)
}

func (n *NotificationService) handleScheduleSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ScheduleSubmitted", zap.String("organization_id", event.OrganizationID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLeaveRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("LeaveRequested", zap.String("organization_id", event.OrganizationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleIncidentReported(ctx context.Context, event events.Event) error {
	n.logger.Info("IncidentReported", zap.String("organization_id", event.OrganizationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCascadeCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("CascadeCompleted",
		zap.String("event_type", string(event.Type)),
		zap.String("organization_id", event.OrganizationID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
