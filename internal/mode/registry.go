// Package mode keeps one exclusive-mode record per subject.
//
// The registry is a keyed in-memory store: a map mutex guards the key space
// and each record carries its own lock, held for the whole of a turn or a
// timer fire. Different subjects never contend; within one subject, message
// handling and timer expiry are serialized. A background goroutine evicts
// records that returned to Normal and have nothing armed.
package mode

import (
	"sync"
	"time"

	"github.com/WEAV04/willy/internal/model"
)

// Registry maps subject IDs to their mode records.
type Registry struct {
	mu     sync.Mutex
	states map[string]*State

	stopOnce sync.Once
	done     chan struct{}
}

// NewRegistry creates a registry and starts the idle-record eviction
// goroutine. Call Close to stop it.
func NewRegistry() *Registry {
	r := &Registry{
		states: make(map[string]*State),
		done:   make(chan struct{}),
	}
	go r.cleanup()
	return r
}

// Acquire returns the locked record for subjectID, creating it on first
// contact. The caller must Release it when the turn is done.
func (r *Registry) Acquire(subjectID string) *State {
	for {
		r.mu.Lock()
		s, ok := r.states[subjectID]
		if !ok {
			s = &State{
				Subject:     model.Subject{ID: subjectID},
				Current:     model.ModeNormal,
				lastTouched: time.Now(),
			}
			r.states[subjectID] = s
		}
		r.mu.Unlock()

		s.mu.Lock()
		if s.evicted {
			// Lost a race with the eviction sweep; the map no longer holds
			// this record. Retry against a fresh one.
			s.mu.Unlock()
			continue
		}
		return s
	}
}

// TimerValid reports whether the subject's record still references the
// given timer ID. A fire whose ID was replaced or cleared is stale.
func (r *Registry) TimerValid(subjectID, timerID string) bool {
	r.mu.Lock()
	s, ok := r.states[subjectID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.evicted && s.TimerID != "" && s.TimerID == timerID
}

// ConfirmFire atomically checks that the subject's record still references
// timerID and, if so, clears the reference (a timer is destroyed by firing).
// A false return means the fire is stale and must be dropped.
func (r *Registry) ConfirmFire(subjectID, timerID string) bool {
	r.mu.Lock()
	s, ok := r.states[subjectID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evicted || timerID == "" || s.TimerID != timerID {
		return false
	}
	s.TimerID = ""
	return true
}

// Close stops the eviction goroutine. Safe to call multiple times.
func (r *Registry) Close() error {
	r.stopOnce.Do(func() { close(r.done) })
	return nil
}

const (
	evictInterval = time.Minute
	idleThreshold = 30 * time.Minute
)

func (r *Registry) cleanup() {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-idleThreshold)
	for id, s := range r.states {
		// TryLock: a record busy with a turn is by definition not idle.
		if !s.mu.TryLock() {
			continue
		}
		if s.idle(cutoff) {
			s.evicted = true
			delete(r.states, id)
		}
		s.mu.Unlock()
	}
}
