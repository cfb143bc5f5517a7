// Package classifier scores raw message text against curated Spanish phrase
// sets. It produces a coarse emotion label and, separately, a crisis-severity
// verdict. It is a heuristic triage layer: substring and whole-word matching
// only, no language understanding.
package classifier

import (
	"strings"
	"unicode"

	"github.com/WEAV04/willy/internal/model"
)

// Classifier is stateless and safe for concurrent use.
type Classifier struct{}

// New creates a Classifier over the built-in phrase tables.
func New() *Classifier {
	return &Classifier{}
}

// Classify runs emotion detection and crisis detection for one message.
// recent is the ordered list of prior turns for the same subject, oldest
// first; only the last model.RecentHistoryWindow entries are consulted.
func (c *Classifier) Classify(text string, recent []model.HistoryEntry) model.ClassificationResult {
	emotion := c.DetectEmotion(text)
	return model.ClassificationResult{
		Emotion: emotion,
		Crisis:  c.ClassifyCrisis(text, emotion, recent),
	}
}

// DetectEmotion counts whole-word keyword matches per emotion and returns
// the emotion with the strictly highest count. Ties keep the first maximum
// in the fixed emotion order. Zero total matches yields Neutral.
func (c *Classifier) DetectEmotion(text string) model.Emotion {
	norm := normalize(text)
	words := tokenSet(norm)

	best := model.EmotionNeutral
	bestCount := 0
	for _, emotion := range emotionOrder {
		count := 0
		for _, kw := range emotionKeywords[emotion] {
			if strings.ContainsRune(kw, ' ') {
				if strings.Contains(norm, kw) {
					count++
				}
			} else if words[kw] {
				count++
			}
		}
		if count > bestCount {
			best = emotion
			bestCount = count
		}
	}
	return best
}

// ClassifyCrisis applies the ordered crisis rules. The first matching rule
// wins; rules never stack. Nil means no rule fired.
func (c *Classifier) ClassifyCrisis(text string, emotion model.Emotion, recent []model.HistoryEntry) *model.CrisisVerdict {
	norm := normalize(text)

	if containsAny(norm, suicidalPhrases) {
		return &model.CrisisVerdict{Category: model.CrisisSuicidalIdeation, Urgency: model.UrgencyHigh}
	}
	if containsAny(norm, selfHarmPhrases) {
		return &model.CrisisVerdict{Category: model.CrisisSelfHarmRisk, Urgency: model.UrgencyHigh}
	}
	if containsAny(norm, collapsePhrases) {
		if emotion.IsHopeless() || containsAny(norm, urgentPhrases) {
			return &model.CrisisVerdict{Category: model.CrisisSevereCollapse, Urgency: model.UrgencyHigh}
		}
		if sustainedNegativity(recent) {
			return &model.CrisisVerdict{Category: model.CrisisSevereCollapse, Urgency: model.UrgencyHigh}
		}
	}
	return nil
}

// SupervisionRisk reports whether the text carries one of the fixed risk
// phrases watched for while supervising a vulnerable person. Deliberately
// eager: "me caí pero estoy bien" still matches, because a fall followed by
// silence is exactly the case the escalation timer exists for.
func (c *Classifier) SupervisionRisk(text string) bool {
	return containsAny(normalize(text), supervisionRiskPhrases)
}

// sustainedNegativity reports whether at least sustainedNegativeThreshold of
// the last RecentHistoryWindow prior turns carried a negative emotion.
func sustainedNegativity(recent []model.HistoryEntry) bool {
	if len(recent) > model.RecentHistoryWindow {
		recent = recent[len(recent)-model.RecentHistoryWindow:]
	}
	negatives := 0
	for _, h := range recent {
		if h.Emotion.IsNegative() {
			negatives++
		}
	}
	return negatives >= sustainedNegativeThreshold
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

// tokenSet splits normalized text into letter runs. Punctuation and digits
// act as separators so "¡triste!" matches the keyword "triste".
func tokenSet(norm string) map[string]bool {
	words := strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
