package model

// CrisisCategory is the kind of acute risk the classifier detected.
type CrisisCategory string

const (
	CrisisSuicidalIdeation CrisisCategory = "suicidal_ideation"
	CrisisSelfHarmRisk     CrisisCategory = "self_harm_risk"
	CrisisSevereCollapse   CrisisCategory = "severe_emotional_collapse"
)

// Urgency grades a crisis verdict. Every rule in the current classifier
// produces UrgencyHigh; the type exists so the wire format doesn't change
// if graded rules are added later.
type Urgency string

const UrgencyHigh Urgency = "high"

// CrisisVerdict is the classifier's judgment that a message indicates
// acute self-harm or suicide risk. Nil means no rule fired.
type CrisisVerdict struct {
	Category CrisisCategory `json:"category"`
	Urgency  Urgency        `json:"urgency"`
}

// ClassificationResult is produced fresh per message and never stored.
type ClassificationResult struct {
	Emotion Emotion        `json:"emotion"`
	Crisis  *CrisisVerdict `json:"crisis,omitempty"`
}
