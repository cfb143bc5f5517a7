package model

import "time"

// MessageRole identifies who produced an inbound message.
type MessageRole string

const (
	RoleUser       MessageRole = "user"       // the primary user speaking for themselves
	RoleSupervised MessageRole = "supervised" // a supervised third party relayed into the chat
)

// InboundMessage is one user turn entering the orchestrator.
type InboundMessage struct {
	SubjectID string      `json:"subject_id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

// HistoryEntry is one prior turn as the classifier sees it. The sustained
// negativity rule needs at most the last RecentHistoryWindow entries.
type HistoryEntry struct {
	Text    string  `json:"text"`
	Emotion Emotion `json:"emotion"`
}

// RecentHistoryWindow bounds how far back the crisis classifier looks.
const RecentHistoryWindow = 4
