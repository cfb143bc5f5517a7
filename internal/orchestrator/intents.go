package orchestrator

import (
	"strings"
	"unicode"

	"github.com/WEAV04/willy/internal/model"
)

// Intent is an explicit mode request detected by fixed keyword sets.
type Intent int

const (
	IntentNone Intent = iota
	IntentEnterTherapy
	IntentRecovered // "ya estoy mejor": closes therapy, confirms recovery
	IntentStartSupervision
	IntentStopSupervision
	IntentRequestParental
	IntentStopParental
	IntentEmergencyServices
)

var emergencyPhrases = []string{
	"llama a emergencias",
	"llamar a emergencias",
	"llamen a emergencias",
	"necesito una ambulancia",
	"llama al 911",
	"llama al 112",
	"quiero llamar a emergencias",
}

var recoveredPhrases = []string{
	"ya estoy mejor",
	"ya me siento mejor",
	"me siento mejor",
	"gracias, ya estoy bien",
	"ya estoy bien, gracias",
	"ya pasó, gracias",
	"ya paso, gracias",
}

var therapyPhrases = []string{
	"necesito hablar",
	"necesito desahogarme",
	"quiero desahogarme",
	"necesito que me escuches",
	"quiero hablar de lo que siento",
	"me quiero desahogar",
}

var startSupervisionPhrases = []string{
	"cuida a",
	"supervisa a",
	"vigila a",
	"acompaña a",
	"acompana a",
	"modo supervisión",
	"modo supervision",
}

var stopSupervisionPhrases = []string{
	"detener supervisión",
	"detener supervision",
	"detén la supervisión",
	"deten la supervision",
	"termina la supervisión",
	"termina la supervision",
	"deja de cuidar",
	"deja de supervisar",
	"fin de la supervisión",
	"fin de la supervision",
}

var requestParentalDad = []string{
	"modo papá",
	"modo papa",
	"como papá",
	"como papa",
	"como un papá",
	"como un papa",
	"como un padre",
}

var requestParentalMom = []string{
	"modo mamá",
	"modo mama",
	"como mamá",
	"como mama",
	"como una mamá",
	"como una mama",
	"como una madre",
}

var stopParentalPhrases = []string{
	"salir del modo papá",
	"salir del modo papa",
	"salir del modo mamá",
	"salir del modo mama",
	"deja de ser mi papá",
	"deja de ser mi papa",
	"deja de ser mi mamá",
	"deja de ser mi mama",
	"ya no necesito el acompañamiento",
	"ya no necesito el acompanamiento",
}

// confirmPhrases accept a pending parental offer. Matched against the whole
// trimmed message, not as substrings: a bare "sí" inside a longer sentence
// is not a confirmation.
var confirmPhrases = []string{
	"sí", "si",
	"sí, por favor", "si, por favor",
	"sí por favor", "si por favor",
	"sí quiero", "si quiero",
	"acepto",
	"está bien", "esta bien",
	"ok", "dale",
	"claro", "claro que sí", "claro que si",
	"por favor",
}

// detectIntent scans the message against the fixed keyword sets. Stop
// intents are checked before start intents so "deja de supervisar" never
// reads as a supervision start.
func detectIntent(text string) Intent {
	norm := normalize(text)
	switch {
	case containsAny(norm, emergencyPhrases):
		return IntentEmergencyServices
	case containsAny(norm, stopSupervisionPhrases):
		return IntentStopSupervision
	case containsAny(norm, stopParentalPhrases):
		return IntentStopParental
	case containsAny(norm, startSupervisionPhrases):
		return IntentStartSupervision
	case containsAny(norm, requestParentalDad) || containsAny(norm, requestParentalMom):
		return IntentRequestParental
	case containsAny(norm, recoveredPhrases):
		return IntentRecovered
	case containsAny(norm, therapyPhrases):
		return IntentEnterTherapy
	}
	return IntentNone
}

// parentalFlavorIn picks the requested parent voice, defaulting to mom when
// the phrasing doesn't say.
func parentalFlavorIn(text string) model.ParentalFlavor {
	norm := normalize(text)
	if containsAny(norm, requestParentalDad) {
		return model.ParentalDad
	}
	return model.ParentalMom
}

// isConfirmation reports whether the whole message is an acceptance.
func isConfirmation(text string) bool {
	trimmed := strings.TrimFunc(normalize(text), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	for _, p := range confirmPhrases {
		if trimmed == p {
			return true
		}
	}
	return false
}

// supervisionTargetIn extracts the third-party name from a chat-initiated
// supervision start ("cuida a mi abuela" -> "mi abuela"). Empty when the
// phrasing carries no target.
func supervisionTargetIn(text string) string {
	norm := normalize(text)
	for _, p := range []string{"cuida a ", "supervisa a ", "vigila a ", "acompaña a ", "acompana a "} {
		if i := strings.Index(norm, p); i >= 0 {
			target := strings.TrimSpace(norm[i+len(p):])
			if j := strings.IndexAny(target, ".,;"); j >= 0 {
				target = strings.TrimSpace(target[:j])
			}
			return target
		}
	}
	return ""
}

func containsAny(norm string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
