package model

// Emotion is the coarse label the keyword classifier assigns to a turn.
type Emotion string

const (
	EmotionJoy          Emotion = "alegria"
	EmotionSadness      Emotion = "tristeza"
	EmotionAnger        Emotion = "enojo"
	EmotionFear         Emotion = "miedo"
	EmotionAnxiety      Emotion = "ansiedad"
	EmotionStress       Emotion = "estres"
	EmotionLoneliness   Emotion = "soledad"
	EmotionHopelessness Emotion = "desesperanza"
	EmotionFrustration  Emotion = "frustracion"
	EmotionGuilt        Emotion = "culpa"
	EmotionShame        Emotion = "verguenza"
	EmotionDemotivation Emotion = "desmotivacion"
	EmotionCalm         Emotion = "calma"
	EmotionGratitude    Emotion = "gratitud"
	EmotionNeutral      Emotion = "neutral"
	EmotionOther        Emotion = "otra"
)

// IsNegative reports whether the emotion counts toward the sustained
// negativity pattern (tristeza, desesperanza, desmotivacion).
func (e Emotion) IsNegative() bool {
	switch e {
	case EmotionSadness, EmotionHopelessness, EmotionDemotivation:
		return true
	}
	return false
}

// IsHopeless reports whether the emotion gates a severe-collapse phrase
// into a crisis verdict (hopelessness or deep sadness).
func (e Emotion) IsHopeless() bool {
	return e == EmotionHopelessness || e == EmotionSadness
}
