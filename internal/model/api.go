package model

import "time"

// Error codes returned in the standard error envelope.
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodePayloadTooBig = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal      = "INTERNAL"
)

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ErrorDetail carries a machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta is attached to every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AuthTokenRequest exchanges the configured service API key for a JWT.
type AuthTokenRequest struct {
	ServiceID string `json:"service_id"`
	APIKey    string `json:"api_key"`
}

// AuthTokenResponse carries the issued bearer token.
type AuthTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MessageRequest is one inbound turn, as posted by the chat frontend.
// History is the ordered list of prior turns for the same subject; only the
// most recent RecentHistoryWindow entries are consulted.
type MessageRequest struct {
	SubjectID string         `json:"subject_id"`
	Role      MessageRole    `json:"role"`
	Text      string         `json:"text"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	History   []HistoryEntry `json:"history,omitempty"`
}

// MessageResponse returns the turn's directive plus the classification that
// produced it, for the caller's own logging and side effects.
type MessageResponse struct {
	Directive      Directive            `json:"directive"`
	Classification ClassificationResult `json:"classification"`
}

// SupervisionStartRequest opens a supervision session for a third party.
type SupervisionStartRequest struct {
	DisplayName string            `json:"display_name"`
	Profile     string            `json:"profile"`
	Context     string            `json:"context,omitempty"`
	Caregiver   *CaregiverContact `json:"caregiver,omitempty"`
}

// ModeStatusResponse reports a subject's current mode.
type ModeStatusResponse struct {
	SubjectID  string   `json:"subject_id"`
	Mode       Mode     `json:"mode"`
	ModeData   ModeData `json:"mode_data,omitempty"`
	TimerArmed bool     `json:"timer_armed"`
}

// CriticalEventRequest writes a consented critical event. Consent capture
// happens in the calling application; Consented is its attestation and the
// write is rejected without it.
type CriticalEventRequest struct {
	SubjectID  string            `json:"subject_id"`
	EventType  CriticalEventType `json:"event_type"`
	Detail     string            `json:"detail"`
	ModeAtTime Mode              `json:"mode_at_time"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"`
	Consented  bool              `json:"consented"`
}
