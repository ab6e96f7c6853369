package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
)

const defaultQueueSize = 256

// WebhookWorker posts complaint events to the configured endpoint from a background goroutine.
// Delivery is best effort: a full queue drops the event and failed posts are only logged.
type WebhookWorker struct {
	client *resty.Client
	url    string
	logger *zap.Logger

	mu     sync.Mutex
	queue  chan events.Event
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewWebhookWorker builds the worker. It stays inert when no webhook URL is configured.
func NewWebhookWorker(cfg config.NotificationConfig, logger *zap.Logger) *WebhookWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	client := resty.New().
		SetTimeout(cfg.Timeout()).
		SetRetryCount(max(cfg.RetryCount, 0)).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		})
	return &WebhookWorker{
		client: client,
		url:    strings.TrimSpace(cfg.WebhookURL),
		logger: logger.With(zap.String("component", "webhook")),
		queue:  make(chan events.Event, size),
	}
}

// Enabled reports whether events are forwarded anywhere.
func (w *WebhookWorker) Enabled() bool {
	return w.url != ""
}

// Start launches the delivery loop. It returns immediately.
func (w *WebhookWorker) Start(ctx context.Context) {
	if !w.Enabled() {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.queue:
				if !ok {
					return
				}
				if err := w.Deliver(ctx, event); err != nil {
					w.logger.Warn("webhook delivery failed",
						zap.String("event_type", string(event.Type)),
						zap.Int64("complaint_id", event.ComplaintID),
						zap.Error(err))
				}
			}
		}
	}()
	w.logger.Info("webhook worker started", zap.String("url", w.url))
}

// Enqueue hands an event to the delivery loop without blocking.
// It reports false when the worker is disabled, stopped or saturated.
func (w *WebhookWorker) Enqueue(event events.Event) bool {
	if !w.Enabled() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- event:
		return true
	default:
		w.logger.Warn("webhook queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("complaint_id", event.ComplaintID))
		return false
	}
}

// Deliver posts one event as JSON and waits for the endpoint to accept it.
func (w *WebhookWorker) Deliver(ctx context.Context, event events.Event) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", string(event.Type)).
		SetBody(event).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("post %s: %w", event.Type, err)
	}
	if resp.IsError() {
		return fmt.Errorf("post %s: endpoint answered %s", event.Type, resp.Status())
	}
	return nil
}

// Stop flushes queued events and waits for the loop to exit.
// Cancelling the context passed to Start abandons whatever is still queued.
func (w *WebhookWorker) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	if w.cancel != nil {
		w.cancel()
	}
}
