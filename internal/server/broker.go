package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/WEAV04/willy/internal/model"
	"github.com/WEAV04/willy/internal/storage"
)

// Broker fans out fired caregiver alerts to SSE subscribers. It implements
// the escalation notifier contract, so the escalation manager hands it each
// valid expiry directly.
type Broker struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[chan []byte]struct{}
}

// NewBroker creates a new SSE broker.
func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger:      logger,
		subscribers: make(map[chan []byte]struct{}),
	}
}

// Notify broadcasts one alert to every subscriber.
func (b *Broker) Notify(_ context.Context, ev model.AlertEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("broker: marshal alert", "error", err, "subject_id", ev.SubjectID)
		return
	}
	b.broadcast(formatSSE("alert", string(payload)))
}

// Subscribe returns a channel that receives SSE-formatted events.
// The caller must call Unsubscribe when done.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64) // Buffer to avoid blocking the broadcast loop.
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
	close(ch)
}

// broadcast sends an event to all subscribers. Slow subscribers with a full
// buffer are skipped so one stuck client cannot block the rest.
func (b *Broker) broadcast(event []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// formatSSE formats a payload as a Server-Sent Events message.
func formatSSE(eventType, data string) []byte {
	return []byte("event: " + eventType + "\ndata: " + data + "\n\n")
}

// AlertSink is the composite notifier wired into the escalation manager:
// it records the fired alert durably and fans it out over SSE. Each step is
// best-effort on its own so a storage fault never suppresses the live
// notification.
type AlertSink struct {
	db     *storage.DB
	broker *Broker
	logger *slog.Logger
}

// NewAlertSink creates an AlertSink. db may be nil in tests.
func NewAlertSink(db *storage.DB, broker *Broker, logger *slog.Logger) *AlertSink {
	return &AlertSink{db: db, broker: broker, logger: logger}
}

// Notify persists and broadcasts one fired alert.
func (s *AlertSink) Notify(ctx context.Context, ev model.AlertEvent) {
	if s.db != nil {
		if err := s.db.InsertAlert(ctx, ev); err != nil {
			s.logger.Error("alert sink: persist alert", "error", err, "subject_id", ev.SubjectID)
		}
	}
	if s.broker != nil {
		s.broker.Notify(ctx, ev)
	}
}
