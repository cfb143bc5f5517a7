package escalation_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WEAV04/willy/internal/escalation"
	"github.com/WEAV04/willy/internal/mode"
	"github.com/WEAV04/willy/internal/model"
)

// captureNotifier records every alert it receives.
type captureNotifier struct {
	mu     sync.Mutex
	events []model.AlertEvent
}

func (n *captureNotifier) Notify(_ context.Context, ev model.AlertEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *captureNotifier) all() []model.AlertEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.AlertEvent, len(n.events))
	copy(out, n.events)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func setup(t *testing.T) (*mode.Registry, *escalation.Manager, *captureNotifier) {
	t.Helper()
	reg := mode.NewRegistry()
	notifier := &captureNotifier{}
	mgr := escalation.NewManager(reg, notifier, testLogger())
	t.Cleanup(func() {
		_ = mgr.Close()
		_ = reg.Close()
	})
	return reg, mgr, notifier
}

// armSupervised puts the subject in supervision mode and arms a timer,
// wiring the returned ID onto the record as the orchestrator would.
func armSupervised(reg *mode.Registry, mgr *escalation.Manager, subjectID string, deadline time.Duration, payload model.AlertEvent) string {
	s := reg.Acquire(subjectID)
	defer s.Release()
	s.EnterSupervision(model.SupervisionData{Profile: "Ana, 6 años"})
	id := mgr.Arm(subjectID, deadline, payload)
	s.TimerID = id
	return id
}

func TestFire_EmitsExactlyOneAlert(t *testing.T) {
	reg, mgr, notifier := setup(t)

	payload := model.AlertEvent{
		SubjectID:   "ana",
		Subject:     model.Subject{ID: "ana", DisplayName: "Ana"},
		Caregiver:   &model.CaregiverContact{Name: "Lucía", Relationship: "madre", Phone: "+34600000000"},
		LastMessage: "me caí pero estoy bien",
	}
	armSupervised(reg, mgr, "ana", 20*time.Millisecond, payload)

	require.Eventually(t, func() bool {
		return len(notifier.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	ev := notifier.all()[0]
	assert.Equal(t, "ana", ev.SubjectID)
	require.NotNil(t, ev.Caregiver)
	assert.Equal(t, "Lucía", ev.Caregiver.Name)
	assert.Equal(t, "me caí pero estoy bien", ev.LastMessage)
	assert.False(t, ev.Timestamp.IsZero())

	// Firing destroys the timer: the record no longer references it.
	s := reg.Acquire("ana")
	assert.Empty(t, s.TimerID)
	s.Release()

	// And it does not re-arm itself.
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, notifier.all(), 1)
}

func TestCancelBeforeDeadline_NeverAlerts(t *testing.T) {
	reg, mgr, notifier := setup(t)

	armSupervised(reg, mgr, "ana", 50*time.Millisecond, model.AlertEvent{SubjectID: "ana"})
	mgr.Cancel("ana")

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, notifier.all())
}

func TestStaleFire_ModeChangedAfterArming_NoAlert(t *testing.T) {
	reg, mgr, notifier := setup(t)

	armSupervised(reg, mgr, "ana", 30*time.Millisecond, model.AlertEvent{SubjectID: "ana"})

	// The subject checks back in: the orchestrator cancels and clears the
	// reference before the deadline; the goroutine's fire must be a no-op
	// even if Cancel lost the race.
	s := reg.Acquire("ana")
	s.TimerID = ""
	s.Reset()
	s.Release()

	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, notifier.all())
}

func TestRearm_ReplacesOldTimer(t *testing.T) {
	reg, mgr, notifier := setup(t)

	first := armSupervised(reg, mgr, "ana", 30*time.Millisecond, model.AlertEvent{SubjectID: "ana", LastMessage: "primera"})

	// A fresh risk message re-arms with a new deadline; the old timer must
	// be cancelled, not left dangling.
	s := reg.Acquire("ana")
	second := mgr.Arm("ana", 60*time.Millisecond, model.AlertEvent{SubjectID: "ana", LastMessage: "segunda"})
	s.TimerID = second
	s.Release()
	require.NotEqual(t, first, second)

	require.Eventually(t, func() bool {
		return len(notifier.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "segunda", notifier.all()[0].LastMessage)

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, notifier.all(), 1, "replaced timer must never fire")
}

func TestFire_UnknownSubjectIsStale(t *testing.T) {
	_, mgr, notifier := setup(t)

	// Armed without any record wiring: the owner check can never pass.
	mgr.Arm("ghost", 20*time.Millisecond, model.AlertEvent{SubjectID: "ghost"})

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, notifier.all())
}

func TestIndependentSubjectsFireIndependently(t *testing.T) {
	reg, mgr, notifier := setup(t)

	armSupervised(reg, mgr, "ana", 20*time.Millisecond, model.AlertEvent{SubjectID: "ana"})
	armSupervised(reg, mgr, "abuela", 20*time.Millisecond, model.AlertEvent{SubjectID: "abuela"})

	require.Eventually(t, func() bool {
		return len(notifier.all()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	seen := map[string]bool{}
	for _, ev := range notifier.all() {
		seen[ev.SubjectID] = true
	}
	assert.True(t, seen["ana"] && seen["abuela"])
}
