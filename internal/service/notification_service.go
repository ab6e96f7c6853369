package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
)

// Notifier forwards events outside the process. *worker.WebhookWorker satisfies it.
type Notifier interface {
	Enqueue(event events.Event) bool
}

// NotificationService logs complaint events and hands them to the outbound notifier.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil notifier keeps notifications log-only.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, notifier Notifier) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every complaint event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	n.dispatcher.Subscribe(events.EventComplaintTaken, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintRejected, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintResolved, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintDeleted, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintAssigned, n.handleComplaintAssigned)
}

func (n *NotificationService) handleComplaintCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ComplaintCreated", zap.Int64("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.forward(event)
	return nil
}

func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ComplaintStatusChanged",
		zap.String("event_type", string(event.Type)),
		zap.Int64("complaint_id", event.ComplaintID),
		zap.Any("payload", event.Payload))
	n.forward(event)
	return nil
}

func (n *NotificationService) handleComplaintAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("ComplaintAssigned", zap.Int64("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.forward(event)
	return nil
}

func (n *NotificationService) forward(event events.Event) {
	if n.notifier == nil {
		return
	}
	if !n.notifier.Enqueue(event) {
		n.logger.Debug("notification not queued",
			zap.String("event_type", string(event.Type)),
			zap.Int64("complaint_id", event.ComplaintID))
	}
}
