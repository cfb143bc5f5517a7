package model

// SuggestedAction is an opaque tag consumed by the calling application to
// trigger side effects outside this core (notify caregiver, log event, ...).
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

// Directive is the uniform output of every mode for one turn. BaseMessage is
// always usable as-is; when NeedsExternalPhrasing is set the caller should
// hand it to the phrasing collaborator along with FurtherContext, but a
// phrasing failure must still deliver BaseMessage (the collaborator is
// best-effort by contract).
type Directive struct {
	BaseMessage           string          `json:"base_message"`
	NeedsExternalPhrasing bool            `json:"needs_external_phrasing"`
	FurtherContext        string          `json:"further_context,omitempty"`
	SuggestedAction       SuggestedAction `json:"suggested_action"`
	Mode                  Mode            `json:"mode"`
}
