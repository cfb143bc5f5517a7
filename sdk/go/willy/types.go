package willy

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Mode is one of the five mutually exclusive behavioral states the server
// tracks per subject.
type Mode string

const (
	ModeNormal       Mode = "normal"
	ModeTherapy      Mode = "therapy"
	ModeCrisis       Mode = "crisis"
	ModeParentalRole Mode = "parental_role"
	ModeSupervision  Mode = "supervision"
)

// MessageRole identifies who produced a message.
type MessageRole string

const (
	RoleUser       MessageRole = "user"
	RoleSupervised MessageRole = "supervised"
)

// SuggestedAction is the opaque tag the server attaches to each directive.
// Callers switch on it to trigger side effects (notify caregiver, log, ...).
type SuggestedAction string

const (
	ActionContinueNormal          SuggestedAction = "CONTINUE_NORMAL"
	ActionOfferEmotionalSupport   SuggestedAction = "OFFER_EMOTIONAL_SUPPORT"
	ActionGuideToProfessionalHelp SuggestedAction = "GUIDE_TO_PROFESSIONAL_HELP"
	ActionEmergencyReferral       SuggestedAction = "EMERGENCY_REFERRAL"
	ActionUrgentCheckIn           SuggestedAction = "URGENT_CHECK_IN"
	ActionRiskDetectedTimer       SuggestedAction = "RISK_DETECTED_INITIATE_TIMER"
	ActionSuggestParentalMode     SuggestedAction = "SUGGEST_PARENTAL_MODE"
	ActionCheckIn                 SuggestedAction = "CHECK_IN"
	ActionAmbientPresence         SuggestedAction = "AMBIENT_PRESENCE"
	ActionCloseMode               SuggestedAction = "CLOSE_MODE"
	ActionInvalidRequest          SuggestedAction = "INVALID_REQUEST"
)

// Directive is the server's per-turn output. BaseMessage is always usable
// as-is; when NeedsExternalPhrasing is set the caller may rephrase it with
// FurtherContext, falling back to BaseMessage on any failure.
type Directive struct {
	BaseMessage           string          `json:"base_message"`
	NeedsExternalPhrasing bool            `json:"needs_external_phrasing"`
	FurtherContext        string          `json:"further_context,omitempty"`
	SuggestedAction       SuggestedAction `json:"suggested_action"`
	Mode                  Mode            `json:"mode"`
}

// CrisisVerdict is the classifier's judgment that a message indicates acute
// self-harm or suicide risk.
type CrisisVerdict struct {
	Category string `json:"category"`
	Urgency  string `json:"urgency"`
}

// Classification is the per-message emotion and crisis result.
type Classification struct {
	Emotion string         `json:"emotion"`
	Crisis  *CrisisVerdict `json:"crisis,omitempty"`
}

// HistoryEntry is one prior turn supplied for the sustained-negativity rule.
type HistoryEntry struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

// MessageRequest is one conversation turn.
type MessageRequest struct {
	SubjectID string         `json:"subject_id"`
	Role      MessageRole    `json:"role,omitempty"`
	Text      string         `json:"text"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	History   []HistoryEntry `json:"history,omitempty"`
}

// MessageResponse carries the directive plus the classification that
// produced it.
type MessageResponse struct {
	Directive      Directive      `json:"directive"`
	Classification Classification `json:"classification"`
}

// CaregiverContact is who gets alerted when a supervision timer fires.
type CaregiverContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Subject is a tracked person, either the primary user or a supervised
// third party.
type Subject struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Caregiver   *CaregiverContact `json:"caregiver,omitempty"`
}

// StartSupervisionRequest opens a supervision session.
type StartSupervisionRequest struct {
	DisplayName string            `json:"display_name"`
	Profile     string            `json:"profile"`
	Context     string            `json:"context,omitempty"`
	Caregiver   *CaregiverContact `json:"caregiver,omitempty"`
}

// ModeStatus reports a subject's current mode. ModeData is the raw variant
// payload for the active mode; Normal and Therapy carry none.
type ModeStatus struct {
	SubjectID  string          `json:"subject_id"`
	Mode       Mode            `json:"mode"`
	ModeData   json.RawMessage `json:"mode_data,omitempty"`
	TimerArmed bool            `json:"timer_armed"`
}

// CriticalEvent is one entry in a subject's consented append-only log.
type CriticalEvent struct {
	ID         uuid.UUID `json:"id"`
	SubjectID  string    `json:"subject_id"`
	EventType  string    `json:"event_type"`
	Detail     string    `json:"detail"`
	ModeAtTime Mode      `json:"mode_at_time"`
	Timestamp  time.Time `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordEventRequest writes a critical event. Consented is the caller's
// attestation that the subject agreed to the write; the server rejects the
// request without it.
type RecordEventRequest struct {
	SubjectID  string     `json:"subject_id"`
	EventType  string     `json:"event_type"`
	Detail     string     `json:"detail"`
	ModeAtTime Mode       `json:"mode_at_time"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Consented  bool       `json:"consented"`
}

// Alert is a fired caregiver alert: a risk signal went unacknowledged past
// its escalation deadline.
type Alert struct {
	SubjectID   string            `json:"subject_id"`
	Subject     Subject           `json:"subject"`
	Caregiver   *CaregiverContact `json:"caregiver,omitempty"`
	LastMessage string            `json:"last_message"`
	Timestamp   time.Time         `json:"timestamp"`
}

// HealthResponse is the server's health report.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Uptime   int64  `json:"uptime_seconds"`
}
