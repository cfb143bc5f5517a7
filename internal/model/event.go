package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CriticalEventType categorizes a recorded risk occurrence.
type CriticalEventType string

const (
	EventCrisisDetected    CriticalEventType = "CrisisDetected"
	EventEscalationFired   CriticalEventType = "EscalationFired"
	EventEmergencyReferral CriticalEventType = "EmergencyReferral"
	EventSupervisionRisk   CriticalEventType = "SupervisionRisk"
)

// CriticalEvent is an append-only record of a risk occurrence, written only
// after explicit subject consent (consent capture happens outside this
// core). Never mutated or deleted here.
type CriticalEvent struct {
	ID         uuid.UUID         `json:"id"`
	SubjectID  string            `json:"subject_id"`
	EventType  CriticalEventType `json:"event_type"`
	Detail     string            `json:"detail"`
	ModeAtTime Mode              `json:"mode_at_time"`
	Timestamp  time.Time         `json:"timestamp"`
	CreatedAt  time.Time         `json:"created_at"`
}

// MaxEventDetailLen bounds the free-text detail of a critical event.
const MaxEventDetailLen = 4000

// ValidateCriticalEvent checks a write request before it reaches storage.
func ValidateCriticalEvent(e CriticalEvent) error {
	if e.SubjectID == "" {
		return fmt.Errorf("model: subject_id is required")
	}
	switch e.EventType {
	case EventCrisisDetected, EventEscalationFired, EventEmergencyReferral, EventSupervisionRisk:
	default:
		return fmt.Errorf("model: unknown event_type %q", e.EventType)
	}
	if !e.ModeAtTime.Valid() {
		return fmt.Errorf("model: unknown mode_at_time %q", e.ModeAtTime)
	}
	if len(e.Detail) > MaxEventDetailLen {
		return fmt.Errorf("model: detail exceeds %d bytes", MaxEventDetailLen)
	}
	return nil
}
