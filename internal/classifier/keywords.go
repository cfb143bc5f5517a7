package classifier

import "github.com/WEAV04/willy/internal/model"

// emotionOrder fixes the iteration order over the emotion set. Ties in the
// keyword count keep the first-encountered maximum, so this order is part
// of the classifier's contract.
var emotionOrder = []model.Emotion{
	model.EmotionSadness,
	model.EmotionHopelessness,
	model.EmotionDemotivation,
	model.EmotionAnxiety,
	model.EmotionFear,
	model.EmotionStress,
	model.EmotionLoneliness,
	model.EmotionAnger,
	model.EmotionFrustration,
	model.EmotionGuilt,
	model.EmotionShame,
	model.EmotionJoy,
	model.EmotionCalm,
	model.EmotionGratitude,
}

// emotionKeywords maps each emotion to its whole-word markers. Matching is
// case-insensitive; negations are not handled ("no estoy triste" still
// counts toward tristeza), which is the accepted baseline behavior.
var emotionKeywords = map[model.Emotion][]string{
	model.EmotionSadness: {
		"triste", "tristeza", "llorar", "llorando", "deprimido", "deprimida",
		"vacío", "vacía", "melancolía", "desanimado", "desanimada",
	},
	model.EmotionHopelessness: {
		"desesperanza", "sin salida", "sin esperanza", "rendirme", "inútil",
		"no tiene caso", "perdido", "perdida", "hundido", "hundida",
	},
	model.EmotionDemotivation: {
		"desmotivado", "desmotivada", "sin ganas", "flojera", "apatía",
		"no quiero hacer nada", "cansado de todo", "cansada de todo",
	},
	model.EmotionAnxiety: {
		"ansiedad", "ansioso", "ansiosa", "nervios", "nervioso", "nerviosa",
		"taquicardia", "no puedo respirar", "pánico",
	},
	model.EmotionFear: {
		"miedo", "asustado", "asustada", "terror", "aterrado", "aterrada",
		"temo", "pavor",
	},
	model.EmotionStress: {
		"estrés", "estresado", "estresada", "presión", "agobiado", "agobiada",
		"saturado", "saturada", "abrumado", "abrumada",
	},
	model.EmotionLoneliness: {
		"solo", "sola", "soledad", "nadie", "abandonado", "abandonada",
		"aislado", "aislada",
	},
	model.EmotionAnger: {
		"enojado", "enojada", "enojo", "furioso", "furiosa", "rabia", "ira",
		"molesto", "molesta", "odio",
	},
	model.EmotionFrustration: {
		"frustrado", "frustrada", "frustración", "harto", "harta",
		"no me sale", "estancado", "estancada",
	},
	model.EmotionGuilt: {
		"culpa", "culpable", "arrepentido", "arrepentida", "perdón",
		"mi culpa",
	},
	model.EmotionShame: {
		"vergüenza", "avergonzado", "avergonzada", "ridículo", "ridícula",
		"humillado", "humillada",
	},
	model.EmotionJoy: {
		"feliz", "felicidad", "contento", "contenta", "alegre", "alegría",
		"emocionado", "emocionada", "genial",
	},
	model.EmotionCalm: {
		"tranquilo", "tranquila", "calma", "en paz", "relajado", "relajada",
		"sereno", "serena",
	},
	model.EmotionGratitude: {
		"gracias", "agradecido", "agradecida", "gratitud", "aprecio",
	},
}

// suicidalPhrases force a SuicidalIdeation verdict on their own.
var suicidalPhrases = []string{
	"quiero desaparecer",
	"quiero morir",
	"quiero morirme",
	"no quiero vivir",
	"no quiero seguir viviendo",
	"ya no quiero estar aquí",
	"ya no quiero estar aqui",
	"quitarme la vida",
	"terminar con todo",
	"sería mejor si no existiera",
	"seria mejor si no existiera",
	"no vale la pena seguir",
}

// selfHarmPhrases force a SelfHarmRisk verdict on their own.
var selfHarmPhrases = []string{
	"me quiero cortar",
	"me corté",
	"me corte",
	"me quiero lastimar",
	"hacerme daño",
	"hacerme dano",
	"me hago daño",
	"lastimarme",
	"golpearme",
}

// collapsePhrases signal severe emotional collapse. They become a verdict
// only when gated by the current emotion, an unconditionally urgent phrase,
// or the sustained-negativity pattern.
var collapsePhrases = []string{
	"no puedo más",
	"no puedo mas",
	"ya no aguanto",
	"no aguanto más",
	"no aguanto mas",
	"todo está mal",
	"todo esta mal",
	"nada tiene sentido",
	"estoy destrozado",
	"estoy destrozada",
	"no le encuentro sentido",
	"ayúdenme por favor",
	"ayudenme por favor",
	"necesito ayuda urgente",
}

// urgentPhrases promote a collapse phrase to a verdict regardless of the
// current emotion: explicit calls for help are never ambiguous.
var urgentPhrases = []string{
	"ayúdenme por favor",
	"ayudenme por favor",
	"necesito ayuda urgente",
	"auxilio",
}

// sustainedNegativeThreshold is how many of the last RecentHistoryWindow
// prior turns must carry a negative emotion for the pattern rule to fire.
const sustainedNegativeThreshold = 3

// supervisionRiskPhrases are scanned on every turn attributed to a
// supervised third party. A match arms a caregiver escalation; it does not
// by itself constitute a crisis verdict.
var supervisionRiskPhrases = []string{
	"me caí",
	"me cai",
	"me duele",
	"me siento mal",
	"me siento raro",
	"me siento rara",
	"no puedo levantarme",
	"no me puedo levantar",
	"estoy mareado",
	"estoy mareada",
	"me golpeé",
	"me golpee",
	"me perdí",
	"me perdi",
	"tengo miedo",
	"estoy solo",
	"estoy sola",
	"no encuentro a",
	"ayuda",
}
