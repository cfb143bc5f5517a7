package mode

import (
	"sync"
	"time"

	"github.com/WEAV04/willy/internal/model"
)

// State is the exclusive-mode record for one subject. All reads and writes
// happen while the record is held via Registry.Acquire, so message handling
// and timer expiry for the same subject never interleave.
type State struct {
	mu      sync.Mutex
	evicted bool

	Subject model.Subject

	// Current is the active mode; Data is its variant payload (nil for
	// Normal and Therapy). Exactly one mode is active at any instant.
	Current model.Mode
	Data    model.ModeData

	// TimerID references the armed escalation timer, empty when none.
	// A timer goroutine whose ID no longer matches is stale and must not
	// produce an alert.
	TimerID string

	// PendingParental is set when a parental-role offer was made and not
	// yet confirmed. An offer alone never changes Current or Data.
	PendingParental model.ParentalFlavor

	LastMessage string

	recent      []model.HistoryEntry
	lastTouched time.Time
}

// Release unlocks the record. The caller must not touch the State afterwards.
func (s *State) Release() {
	s.mu.Unlock()
}

// EnterCrisis transitions into crisis mode, implicitly exiting the previous
// mode. The timer reference is deliberately kept: crisis preempts a
// supervision session's display mode but never silently drops an in-flight
// caregiver escalation.
func (s *State) EnterCrisis(category model.CrisisCategory, lastMessage string, now time.Time) {
	s.Current = model.ModeCrisis
	s.Data = model.CrisisData{Category: category, StartedAt: now, LastMessage: lastMessage}
	s.PendingParental = ""
}

// EnterTherapy transitions into therapy mode. Therapy carries no payload.
func (s *State) EnterTherapy() {
	s.Current = model.ModeTherapy
	s.Data = nil
	s.PendingParental = ""
}

// EnterParental transitions into parental-role mode.
func (s *State) EnterParental(flavor model.ParentalFlavor, by model.ParentalActivation, now time.Time) {
	s.Current = model.ModeParentalRole
	s.Data = model.ParentalData{Flavor: flavor, ActivatedBy: by, StartedAt: now}
	s.PendingParental = ""
}

// EnterSupervision transitions into supervision mode for a third party.
func (s *State) EnterSupervision(data model.SupervisionData) {
	s.Current = model.ModeSupervision
	s.Data = data
	s.PendingParental = ""
}

// Reset returns the record to Normal. The caller is responsible for
// cancelling any armed escalation timer before resetting.
func (s *State) Reset() {
	s.Current = model.ModeNormal
	s.Data = nil
	s.PendingParental = ""
}

// RecordTurn appends the turn to the bounded emotion history and updates
// the last-message snapshot.
func (s *State) RecordTurn(text string, emotion model.Emotion, now time.Time) {
	s.LastMessage = text
	s.lastTouched = now
	s.recent = append(s.recent, model.HistoryEntry{Text: text, Emotion: emotion})
	if len(s.recent) > model.RecentHistoryWindow {
		s.recent = s.recent[len(s.recent)-model.RecentHistoryWindow:]
	}
}

// Recent returns a copy of the tracked prior turns, oldest first.
func (s *State) Recent() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(s.recent))
	copy(out, s.recent)
	return out
}

// CrisisData returns the crisis payload, or false when not in crisis mode.
func (s *State) CrisisData() (model.CrisisData, bool) {
	d, ok := s.Data.(model.CrisisData)
	return d, ok
}

// SupervisionData returns the supervision payload, or false when not in
// supervision mode.
func (s *State) SupervisionData() (model.SupervisionData, bool) {
	d, ok := s.Data.(model.SupervisionData)
	return d, ok
}

// ParentalData returns the parental payload, or false when not in
// parental-role mode.
func (s *State) ParentalData() (model.ParentalData, bool) {
	d, ok := s.Data.(model.ParentalData)
	return d, ok
}

// idle reports whether the record can be evicted: back to Normal, no armed
// timer, no pending offer, and untouched since the cutoff.
func (s *State) idle(cutoff time.Time) bool {
	return s.Current == model.ModeNormal &&
		s.TimerID == "" &&
		s.PendingParental == "" &&
		s.lastTouched.Before(cutoff)
}
