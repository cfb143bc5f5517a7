package model

import "time"

// Mode is one of the five mutually exclusive behavioral states.
// Exactly one is active per subject at any instant.
type Mode string

const (
	ModeNormal       Mode = "normal"
	ModeTherapy      Mode = "therapy"
	ModeCrisis       Mode = "crisis"
	ModeParentalRole Mode = "parental_role"
	ModeSupervision  Mode = "supervision"
)

// Valid reports whether m is one of the five known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeTherapy, ModeCrisis, ModeParentalRole, ModeSupervision:
		return true
	}
	return false
}

// ModeData is the variant payload carried by the active mode.
// Normal and Therapy carry none (nil).
type ModeData interface {
	Mode() Mode
}

// CrisisData is the payload while a subject is in crisis mode.
type CrisisData struct {
	Category    CrisisCategory `json:"category"`
	StartedAt   time.Time      `json:"started_at"`
	LastMessage string         `json:"last_message"`
}

func (CrisisData) Mode() Mode { return ModeCrisis }

// ParentalFlavor selects which simulated-parent voice the mode uses.
type ParentalFlavor string

const (
	ParentalDad ParentalFlavor = "papa"
	ParentalMom ParentalFlavor = "mama"
)

// ParentalActivation records how parental-role mode was entered.
type ParentalActivation string

const (
	ParentalRequested ParentalActivation = "user_request"   // explicit ask
	ParentalOffered   ParentalActivation = "offer_accepted" // proactive offer, then confirmed
)

// ParentalData is the payload while a subject is in parental-role mode.
type ParentalData struct {
	Flavor      ParentalFlavor     `json:"flavor"`
	ActivatedBy ParentalActivation `json:"activated_by"`
	StartedAt   time.Time          `json:"started_at"`
}

func (ParentalData) Mode() Mode { return ModeParentalRole }

// SupervisionData is the payload while a vulnerable third party is being
// watched over. Profile describes who ("mi abuela", "Ana, 6 años");
// Context carries the situation the user described when starting.
type SupervisionData struct {
	Profile   string    `json:"profile"`
	Context   string    `json:"context,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

func (SupervisionData) Mode() Mode { return ModeSupervision }
