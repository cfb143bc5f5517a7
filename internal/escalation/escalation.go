// Package escalation manages cancellable alert deadlines, one per subject.
//
// Arming starts a goroutine that waits out the deadline and then asks the
// mode registry, at fire time, whether it still owns the arming timer ID.
// A stale fire (the reference was replaced or cleared in the meantime) is a
// logged no-op. A valid fire emits an AlertEvent snapshot to the notifier
// boundary; delivery failures downstream are not this package's concern.
package escalation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/WEAV04/willy/internal/model"
)

// Owner arbitrates whether a firing timer still owns its subject's record.
// ConfirmFire must atomically check that the record references timerID and
// clear the reference; a false return means the fire is stale.
type Owner interface {
	ConfirmFire(subjectID, timerID string) bool
}

// Notifier receives alert events from valid fires. Implementations must not
// block; slow delivery belongs to the external collaborator.
type Notifier interface {
	Notify(ctx context.Context, ev model.AlertEvent)
}

type timer struct {
	id     string
	cancel chan struct{}
	once   sync.Once
}

func (t *timer) stop() {
	t.once.Do(func() { close(t.cancel) })
}

// Manager arms and cancels escalation timers. At most one timer per subject;
// arming while one is armed replaces it.
type Manager struct {
	owner    Owner
	notifier Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[string]*timer

	firedCount metric.Int64Counter
	staleCount metric.Int64Counter
}

// NewManager creates a Manager. owner is consulted at fire time; notifier
// receives valid alerts.
func NewManager(owner Owner, notifier Notifier, logger *slog.Logger) *Manager {
	meter := otel.GetMeterProvider().Meter("willy/escalation")
	fired, _ := meter.Int64Counter("escalation.alerts_fired")
	stale, _ := meter.Int64Counter("escalation.stale_fires_dropped")
	return &Manager{
		owner:      owner,
		notifier:   notifier,
		logger:     logger,
		timers:     make(map[string]*timer),
		firedCount: fired,
		staleCount: stale,
	}
}

// Arm schedules an alert for subjectID after deadline and returns the timer
// ID the caller must store on the subject's record. Any previously armed
// timer for the subject is cancelled first. Arming never blocks on the
// deadline.
func (m *Manager) Arm(subjectID string, deadline time.Duration, payload model.AlertEvent) string {
	t := &timer{
		id:     uuid.New().String(),
		cancel: make(chan struct{}),
	}

	m.mu.Lock()
	if old, ok := m.timers[subjectID]; ok {
		old.stop()
	}
	m.timers[subjectID] = t
	m.mu.Unlock()

	go m.wait(subjectID, t, deadline, payload)

	m.logger.Info("escalation timer armed",
		"subject_id", subjectID, "timer_id", t.id, "deadline", deadline)
	return t.id
}

// Cancel disarms the subject's pending timer, if any. Cancelling before the
// deadline guarantees no alert; a fire already past its owner check
// completes regardless.
func (m *Manager) Cancel(subjectID string) {
	m.mu.Lock()
	t, ok := m.timers[subjectID]
	if ok {
		delete(m.timers, subjectID)
	}
	m.mu.Unlock()

	if ok {
		t.stop()
		m.logger.Debug("escalation timer cancelled", "subject_id", subjectID, "timer_id", t.id)
	}
}

// Close cancels all pending timers.
func (m *Manager) Close() error {
	m.mu.Lock()
	for id, t := range m.timers {
		t.stop()
		delete(m.timers, id)
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) wait(subjectID string, t *timer, deadline time.Duration, payload model.AlertEvent) {
	select {
	case <-t.cancel:
		return
	case <-time.After(deadline):
	}

	m.forget(subjectID, t)

	ctx := context.Background()
	if !m.owner.ConfirmFire(subjectID, t.id) {
		m.staleCount.Add(ctx, 1)
		m.logger.Info("stale escalation fire dropped",
			"subject_id", subjectID, "timer_id", t.id)
		return
	}

	payload.Timestamp = time.Now().UTC()
	m.firedCount.Add(ctx, 1)
	m.logger.Warn("escalation alert fired",
		"subject_id", subjectID, "timer_id", t.id)
	m.notifier.Notify(ctx, payload)
}

// forget removes the timer entry if it is still the registered one (a
// replacement may already have taken the slot).
func (m *Manager) forget(subjectID string, t *timer) {
	m.mu.Lock()
	if cur, ok := m.timers[subjectID]; ok && cur == t {
		delete(m.timers, subjectID)
	}
	m.mu.Unlock()
}
