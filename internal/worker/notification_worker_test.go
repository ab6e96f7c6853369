package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
)

type capturedEvent struct {
	header string
	event  events.Event
}

type webhookSink struct {
	mu       sync.Mutex
	received []capturedEvent
}

func (s *webhookSink) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event events.Event
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&event)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.received = append(s.received, capturedEvent{header: r.Header.Get("X-Event-Type"), event: event})
		s.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *webhookSink) snapshot() []capturedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedEvent(nil), s.received...)
}

func TestDeliverPostsEventJSON(t *testing.T) {
	sink := &webhookSink{}
	srv := httptest.NewServer(sink.handler(t))
	defer srv.Close()

	w := NewWebhookWorker(config.NotificationConfig{WebhookURL: srv.URL}, nil)
	err := w.Deliver(context.Background(), events.Event{
		ID:          "evt-1",
		Type:        events.EventComplaintResolved,
		ComplaintID: 12,
		Payload: events.StatusChangedPayload{
			OldStatus: domain.ComplaintStatusOpen,
			NewStatus: domain.ComplaintStatusClosed,
		},
	})
	require.NoError(t, err)

	got := sink.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, string(events.EventComplaintResolved), got[0].header)
	assert.Equal(t, "evt-1", got[0].event.ID)
	assert.Equal(t, int64(12), got[0].event.ComplaintID)
	payload, ok := got[0].event.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(domain.ComplaintStatusClosed), payload["new_status"])
}

func TestDeliverRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhookWorker(config.NotificationConfig{WebhookURL: srv.URL, RetryCount: 2}, nil)
	require.NoError(t, w.Deliver(context.Background(), events.Event{Type: events.EventComplaintTaken, ComplaintID: 3}))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDeliverReportsClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	w := NewWebhookWorker(config.NotificationConfig{WebhookURL: srv.URL, RetryCount: 2}, nil)
	err := w.Deliver(context.Background(), events.Event{Type: events.EventComplaintTaken, ComplaintID: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestStopFlushesQueuedEvents(t *testing.T) {
	sink := &webhookSink{}
	srv := httptest.NewServer(sink.handler(t))
	defer srv.Close()

	w := NewWebhookWorker(config.NotificationConfig{WebhookURL: srv.URL, QueueSize: 8}, nil)
	w.Start(context.Background())
	for id := int64(1); id <= 3; id++ {
		require.True(t, w.Enqueue(events.Event{Type: events.EventComplaintCreated, ComplaintID: id}))
	}
	w.Stop()

	got := sink.snapshot()
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, int64(i+1), c.event.ComplaintID)
	}
	assert.False(t, w.Enqueue(events.Event{Type: events.EventComplaintCreated, ComplaintID: 4}))
	w.Stop()
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	w := NewWebhookWorker(config.NotificationConfig{WebhookURL: "http://127.0.0.1:1", QueueSize: 1}, nil)

	assert.True(t, w.Enqueue(events.Event{Type: events.EventComplaintCreated, ComplaintID: 1}))
	assert.False(t, w.Enqueue(events.Event{Type: events.EventComplaintCreated, ComplaintID: 2}))
}

func TestDisabledWorkerIgnoresEvents(t *testing.T) {
	w := NewWebhookWorker(config.NotificationConfig{WebhookURL: "  "}, nil)

	assert.False(t, w.Enabled())
	w.Start(context.Background())
	assert.False(t, w.Enqueue(events.Event{Type: events.EventComplaintCreated, ComplaintID: 1}))
	w.Stop()
}
