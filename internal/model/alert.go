package model

import "time"

// AlertEvent is emitted when an escalation timer fires validly: a risk
// signal went unacknowledged past its deadline. The fields are an immutable
// snapshot captured at arm time; delivery (push/voice/SMS) belongs to the
// external notifier boundary.
type AlertEvent struct {
	SubjectID   string            `json:"subject_id"`
	Subject     Subject           `json:"subject"`
	Caregiver   *CaregiverContact `json:"caregiver,omitempty"`
	LastMessage string            `json:"last_message"`
	Timestamp   time.Time         `json:"timestamp"`
}
