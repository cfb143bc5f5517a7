// Package respond turns a mode decision into a Directive: a base message
// picked from static content tables plus phrasing instructions for the
// external language-generation step. Selection is deterministic given the
// same inputs except for the random pick among equivalent phrasings.
package respond

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/WEAV04/willy/internal/model"
)

// Responder generates per-mode directives. Safe for concurrent use.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Responder with its own random source.
func New(seed int64) *Responder {
	return &Responder{rng: rand.New(rand.NewSource(seed))}
}

// pick selects one of the equivalent phrasings.
func (r *Responder) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return pool[r.rng.Intn(len(pool))]
}

// Crisis returns the directive for a crisis turn. Direct emergency-phrase
// requests bypass the random pool and always select the referral template.
func (r *Responder) Crisis(category model.CrisisCategory, emergencyRequested bool) model.Directive {
	if emergencyRequested {
		return model.Directive{
			BaseMessage:           emergencyReferralMessage,
			NeedsExternalPhrasing: false, // referral wording is fixed on purpose
			SuggestedAction:       model.ActionEmergencyReferral,
			Mode:                  model.ModeCrisis,
		}
	}
	return model.Directive{
		BaseMessage:           r.pick(crisisMessages[category]) + professionalHelpSuffix,
		NeedsExternalPhrasing: true,
		FurtherContext:        crisisContext,
		SuggestedAction:       model.ActionGuideToProfessionalHelp,
		Mode:                  model.ModeCrisis,
	}
}

// Therapy returns the directive for an in-session therapy turn.
func (r *Responder) Therapy() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(therapyMessages),
		NeedsExternalPhrasing: true,
		FurtherContext:        therapyContext,
		SuggestedAction:       model.ActionOfferEmotionalSupport,
		Mode:                  model.ModeTherapy,
	}
}

// TherapyClosing returns the closing message when the user says they feel
// better.
func (r *Responder) TherapyClosing() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(therapyClosingMessages),
		NeedsExternalPhrasing: true,
		FurtherContext:        therapyContext,
		SuggestedAction:       model.ActionCloseMode,
		Mode:                  model.ModeNormal,
	}
}

// Normal returns the everyday-conversation directive.
func (r *Responder) Normal() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(normalMessages),
		NeedsExternalPhrasing: true,
		SuggestedAction:       model.ActionContinueNormal,
		Mode:                  model.ModeNormal,
	}
}

// Support acknowledges a negative emotion outside any special mode.
func (r *Responder) Support() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(supportOpeners),
		NeedsExternalPhrasing: true,
		FurtherContext:        therapyContext,
		SuggestedAction:       model.ActionOfferEmotionalSupport,
		Mode:                  model.ModeNormal,
	}
}

// ParentalOffer proposes parental-role mode without entering it.
func (r *Responder) ParentalOffer(flavor model.ParentalFlavor) model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(parentalOffers[flavor]),
		NeedsExternalPhrasing: true,
		FurtherContext:        parentalContext,
		SuggestedAction:       model.ActionSuggestParentalMode,
		Mode:                  model.ModeNormal, // an offer never changes the mode
	}
}

// ParentalOpen greets the user on entering parental-role mode.
func (r *Responder) ParentalOpen(flavor model.ParentalFlavor) model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(parentalOpeners[flavor]),
		NeedsExternalPhrasing: true,
		FurtherContext:        parentalContext,
		SuggestedAction:       model.ActionOfferEmotionalSupport,
		Mode:                  model.ModeParentalRole,
	}
}

// Parental returns an in-mode parental turn.
func (r *Responder) Parental(flavor model.ParentalFlavor) model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(parentalMessages[flavor]),
		NeedsExternalPhrasing: true,
		FurtherContext:        parentalContext,
		SuggestedAction:       model.ActionOfferEmotionalSupport,
		Mode:                  model.ModeParentalRole,
	}
}

// ParentalClosing closes parental-role mode.
func (r *Responder) ParentalClosing() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(parentalClosingMessages),
		NeedsExternalPhrasing: true,
		FurtherContext:        parentalContext,
		SuggestedAction:       model.ActionCloseMode,
		Mode:                  model.ModeNormal,
	}
}

// SupervisionRisk reacts to a risk phrase from the supervised person: urge a
// reply and announce the caregiver escalation that was just armed.
func (r *Responder) SupervisionRisk(caregiverName string) model.Directive {
	base := r.pick(supervisionRiskMessages)
	if caregiverName != "" {
		base += fmt.Sprintf(" Si no me respondes pronto, avisaré a %s.", caregiverName)
	}
	return model.Directive{
		BaseMessage:           base,
		NeedsExternalPhrasing: true,
		FurtherContext:        supervisionContext,
		SuggestedAction:       model.ActionRiskDetectedTimer,
		Mode:                  model.ModeSupervision,
	}
}

// SupervisionCheckIn acknowledges a reassuring reply after a risk signal.
func (r *Responder) SupervisionCheckIn() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(supervisionCheckInMessages),
		NeedsExternalPhrasing: true,
		FurtherContext:        supervisionContext,
		SuggestedAction:       model.ActionCheckIn,
		Mode:                  model.ModeSupervision,
	}
}

// SupervisionAmbient is the ordinary companionship turn while supervising.
func (r *Responder) SupervisionAmbient() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(supervisionAmbientMessages),
		NeedsExternalPhrasing: true,
		FurtherContext:        supervisionContext,
		SuggestedAction:       model.ActionAmbientPresence,
		Mode:                  model.ModeSupervision,
	}
}

// SupervisionClosing closes a supervision session.
func (r *Responder) SupervisionClosing() model.Directive {
	return model.Directive{
		BaseMessage:           r.pick(supervisionClosingMessages),
		NeedsExternalPhrasing: true,
		SuggestedAction:       model.ActionCloseMode,
		Mode:                  model.ModeNormal,
	}
}

// InvalidStop reports a stop request for a mode that isn't active. This is
// informational for the user, never an error.
func (r *Responder) InvalidStop(requested model.Mode, current model.Mode) model.Directive {
	msg, ok := invalidStopMessages[requested]
	if !ok {
		msg = "No hay nada que detener ahora mismo, pero aquí sigo contigo."
	}
	return model.Directive{
		BaseMessage:           msg,
		NeedsExternalPhrasing: false,
		SuggestedAction:       model.ActionInvalidRequest,
		Mode:                  current,
	}
}
