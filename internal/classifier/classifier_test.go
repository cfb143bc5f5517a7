package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WEAV04/willy/internal/classifier"
	"github.com/WEAV04/willy/internal/model"
)

// ---- DetectEmotion --------------------------------------------------------

func TestDetectEmotion_SingleKeyword(t *testing.T) {
	c := classifier.New()
	assert.Equal(t, model.EmotionSadness, c.DetectEmotion("hoy me siento muy triste"))
	assert.Equal(t, model.EmotionAnxiety, c.DetectEmotion("tengo mucha ansiedad por el examen"))
	assert.Equal(t, model.EmotionJoy, c.DetectEmotion("estoy feliz, me fue genial"))
}

func TestDetectEmotion_NoMatchesIsNeutral(t *testing.T) {
	c := classifier.New()
	assert.Equal(t, model.EmotionNeutral, c.DetectEmotion("mañana hay partido a las ocho"))
	assert.Equal(t, model.EmotionNeutral, c.DetectEmotion(""))
}

func TestDetectEmotion_StrictMaxWins(t *testing.T) {
	c := classifier.New()
	// Two sadness markers vs one anger marker.
	got := c.DetectEmotion("estoy triste y deprimido, y un poco molesto")
	assert.Equal(t, model.EmotionSadness, got)
}

func TestDetectEmotion_TieKeepsFirstInOrder(t *testing.T) {
	c := classifier.New()
	// One sadness keyword and one anger keyword: sadness comes first in the
	// fixed emotion order, so it keeps the maximum.
	got := c.DetectEmotion("estoy triste y molesto")
	assert.Equal(t, model.EmotionSadness, got)
}

func TestDetectEmotion_CaseAndPunctuationInsensitive(t *testing.T) {
	c := classifier.New()
	assert.Equal(t, model.EmotionSadness, c.DetectEmotion("¡TRISTE!"))
}

func TestDetectEmotion_WholeWordOnly(t *testing.T) {
	c := classifier.New()
	// "tristeza" appears only inside another word; no whole-word match.
	assert.Equal(t, model.EmotionNeutral, c.DetectEmotion("entristezal no es una palabra"))
}

func TestDetectEmotion_NegationsIgnoredBaseline(t *testing.T) {
	c := classifier.New()
	// Known gap, kept deliberately: negations are not parsed.
	assert.Equal(t, model.EmotionSadness, c.DetectEmotion("no estoy triste"))
}

// ---- ClassifyCrisis -------------------------------------------------------

func TestClassifyCrisis_SuicidalPhrasesAlwaysHigh(t *testing.T) {
	c := classifier.New()
	phrases := []string{
		"quiero desaparecer",
		"no quiero vivir",
		"ya no quiero estar aquí",
		"quitarme la vida",
	}
	for _, p := range phrases {
		v := c.ClassifyCrisis(p, model.EmotionNeutral, nil)
		require.NotNil(t, v, "phrase %q must produce a verdict", p)
		assert.Equal(t, model.CrisisSuicidalIdeation, v.Category)
		assert.Equal(t, model.UrgencyHigh, v.Urgency)
	}
}

func TestClassifyCrisis_SelfHarmAlwaysHigh(t *testing.T) {
	c := classifier.New()
	for _, p := range []string{"me quiero cortar", "me hago daño", "lastimarme otra vez"} {
		v := c.ClassifyCrisis(p, model.EmotionJoy, nil)
		require.NotNil(t, v, "phrase %q must produce a verdict", p)
		assert.Equal(t, model.CrisisSelfHarmRisk, v.Category)
		assert.Equal(t, model.UrgencyHigh, v.Urgency)
	}
}

func TestClassifyCrisis_SuicidalRuleWinsOverSelfHarm(t *testing.T) {
	c := classifier.New()
	v := c.ClassifyCrisis("quiero desaparecer y hacerme daño", model.EmotionNeutral, nil)
	require.NotNil(t, v)
	assert.Equal(t, model.CrisisSuicidalIdeation, v.Category)
}

func TestClassifyCrisis_CollapseNeedsGate(t *testing.T) {
	c := classifier.New()
	// Collapse phrase with a neutral emotion and no history: no verdict.
	assert.Nil(t, c.ClassifyCrisis("ya no aguanto", model.EmotionNeutral, nil))
}

func TestClassifyCrisis_CollapseGatedByHopelessEmotion(t *testing.T) {
	c := classifier.New()
	v := c.ClassifyCrisis("ya no aguanto", model.EmotionHopelessness, nil)
	require.NotNil(t, v)
	assert.Equal(t, model.CrisisSevereCollapse, v.Category)

	v = c.ClassifyCrisis("no puedo más", model.EmotionSadness, nil)
	require.NotNil(t, v)
	assert.Equal(t, model.CrisisSevereCollapse, v.Category)
}

func TestClassifyCrisis_UnconditionallyUrgentPhrase(t *testing.T) {
	c := classifier.New()
	v := c.ClassifyCrisis("necesito ayuda urgente", model.EmotionNeutral, nil)
	require.NotNil(t, v)
	assert.Equal(t, model.CrisisSevereCollapse, v.Category)
	assert.Equal(t, model.UrgencyHigh, v.Urgency)
}

func TestClassifyCrisis_SustainedNegativityPattern(t *testing.T) {
	c := classifier.New()
	history := []model.HistoryEntry{
		{Text: "estoy triste", Emotion: model.EmotionSadness},
		{Text: "sin ganas de nada", Emotion: model.EmotionDemotivation},
		{Text: "qué día", Emotion: model.EmotionNeutral},
		{Text: "todo me sale mal", Emotion: model.EmotionHopelessness},
	}
	// 3 of the last 4 turns negative + collapse phrase now.
	v := c.ClassifyCrisis("ya no aguanto", model.EmotionNeutral, history)
	require.NotNil(t, v)
	assert.Equal(t, model.CrisisSevereCollapse, v.Category)
}

func TestClassifyCrisis_SustainedNegativityNeedsCollapsePhrase(t *testing.T) {
	c := classifier.New()
	history := []model.HistoryEntry{
		{Emotion: model.EmotionSadness},
		{Emotion: model.EmotionSadness},
		{Emotion: model.EmotionHopelessness},
		{Emotion: model.EmotionDemotivation},
	}
	// Negative history alone, no collapse phrase in the current message.
	assert.Nil(t, c.ClassifyCrisis("hoy fue un día normal", model.EmotionNeutral, history))
}

func TestClassifyCrisis_HistoryWindowIsLastFour(t *testing.T) {
	c := classifier.New()
	// Old negativity outside the window must not count.
	history := []model.HistoryEntry{
		{Emotion: model.EmotionSadness},
		{Emotion: model.EmotionSadness},
		{Emotion: model.EmotionSadness},
		{Emotion: model.EmotionNeutral},
		{Emotion: model.EmotionNeutral},
		{Emotion: model.EmotionJoy},
		{Emotion: model.EmotionNeutral},
	}
	assert.Nil(t, c.ClassifyCrisis("ya no aguanto", model.EmotionNeutral, history))
}

func TestClassify_ScenarioQuieroDesaparecer(t *testing.T) {
	c := classifier.New()
	res := c.Classify("quiero desaparecer", nil)
	require.NotNil(t, res.Crisis)
	assert.Equal(t, model.CrisisSuicidalIdeation, res.Crisis.Category)
	assert.Equal(t, model.UrgencyHigh, res.Crisis.Urgency)
}

func TestClassify_MissIsNotAnError(t *testing.T) {
	c := classifier.New()
	res := c.Classify("¿me recomiendas una película?", nil)
	assert.Equal(t, model.EmotionNeutral, res.Emotion)
	assert.Nil(t, res.Crisis)
}
