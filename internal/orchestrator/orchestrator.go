// Package orchestrator is the exclusive arbiter of behavioral modes. Each
// inbound message runs the classifier once, walks a fixed precedence ladder
// to decide the subject's mode, arms or disarms the caregiver escalation
// timer, and returns a directive for the external phrasing step.
//
// The subject's record stays locked for the whole turn, so mode mutation
// and timer arming/cancelling are atomic with respect to a racing expiry.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/WEAV04/willy/internal/classifier"
	"github.com/WEAV04/willy/internal/escalation"
	"github.com/WEAV04/willy/internal/mode"
	"github.com/WEAV04/willy/internal/model"
	"github.com/WEAV04/willy/internal/respond"
)

// Orchestrator wires the classifier, the mode registry, the escalation
// manager and the directive generators into the per-turn decision.
type Orchestrator struct {
	classifier *classifier.Classifier
	registry   *mode.Registry
	escalation *escalation.Manager
	responder  *respond.Responder
	logger     *slog.Logger

	// alertDeadline is how long a supervised person has to check back in
	// after a risk signal before the caregiver is alerted.
	alertDeadline time.Duration

	crisisCount metric.Int64Counter
	turnCount   metric.Int64Counter
}

// Config holds the orchestrator's dependencies.
type Config struct {
	Classifier    *classifier.Classifier
	Registry      *mode.Registry
	Escalation    *escalation.Manager
	Responder     *respond.Responder
	Logger        *slog.Logger
	AlertDeadline time.Duration
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	meter := otel.GetMeterProvider().Meter("willy/orchestrator")
	crisis, _ := meter.Int64Counter("orchestrator.crisis_entries")
	turns, _ := meter.Int64Counter("orchestrator.turns")
	return &Orchestrator{
		classifier:    cfg.Classifier,
		registry:      cfg.Registry,
		escalation:    cfg.Escalation,
		responder:     cfg.Responder,
		logger:        cfg.Logger,
		alertDeadline: cfg.AlertDeadline,
		crisisCount:   crisis,
		turnCount:     turns,
	}
}

// HandleMessage runs one turn for the message's subject. history, when
// provided by the caller, overrides the registry's own recent-turn memory
// for the sustained-negativity rule. The returned classification lets the
// caller do its own logging and side effects.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg model.InboundMessage, history []model.HistoryEntry) (model.Directive, model.ClassificationResult, error) {
	s := o.registry.Acquire(msg.SubjectID)
	defer s.Release()

	recent := history
	if len(recent) == 0 {
		recent = s.Recent()
	}
	res := o.classifier.Classify(msg.Text, recent)

	now := msg.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	before := s.Current
	directive := o.decide(ctx, s, msg, res, now)
	s.RecordTurn(msg.Text, res.Emotion, now)

	o.turnCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", string(s.Current)),
	))
	if before != s.Current {
		o.logger.Info("mode transition",
			"subject_id", msg.SubjectID,
			"from", before,
			"to", s.Current,
			"action", directive.SuggestedAction)
	}
	return directive, res, nil
}

// decide walks the precedence ladder with the subject's record held.
func (o *Orchestrator) decide(ctx context.Context, s *mode.State, msg model.InboundMessage, res model.ClassificationResult, now time.Time) model.Directive {
	intent := detectIntent(msg.Text)

	// 1. A crisis verdict forces crisis mode regardless of the current one.
	// Only this subject's record is touched: supervision of a different
	// subject runs on its own record and is never preempted from here.
	if res.Crisis != nil {
		if s.Current != model.ModeCrisis {
			s.EnterCrisis(res.Crisis.Category, msg.Text, now)
			o.crisisCount.Add(ctx, 1, metric.WithAttributes(
				attribute.String("category", string(res.Crisis.Category)),
			))
			o.logger.Warn("crisis mode entered",
				"subject_id", msg.SubjectID,
				"category", res.Crisis.Category)
		} else if d, ok := s.CrisisData(); ok {
			d.LastMessage = msg.Text
			s.Data = d
		}
		return o.responder.Crisis(res.Crisis.Category, intent == IntentEmergencyServices)
	}

	// 2. Already in crisis: remain. An explicit emergency-services phrase
	// short-circuits to the referral directive without leaving the mode;
	// an explicit recovery phrase is the one way back to Normal.
	if s.Current == model.ModeCrisis {
		d, _ := s.CrisisData()
		d.LastMessage = msg.Text
		s.Data = d

		switch intent {
		case IntentEmergencyServices:
			return o.responder.Crisis(d.Category, true)
		case IntentRecovered:
			o.cancelTimer(s, msg.SubjectID)
			s.Reset()
			return o.responder.TherapyClosing()
		}
		return o.responder.Crisis(d.Category, false)
	}

	// 3. Explicit stop intents end their mode and cancel any armed timer.
	// Stopping a mode that isn't active is informational, not an error.
	switch intent {
	case IntentStopSupervision:
		if s.Current != model.ModeSupervision {
			return o.responder.InvalidStop(model.ModeSupervision, s.Current)
		}
		o.cancelTimer(s, msg.SubjectID)
		s.Reset()
		return o.responder.SupervisionClosing()

	case IntentStopParental:
		if s.Current != model.ModeParentalRole {
			return o.responder.InvalidStop(model.ModeParentalRole, s.Current)
		}
		s.Reset()
		return o.responder.ParentalClosing()

	case IntentRecovered:
		if s.Current != model.ModeTherapy {
			if s.Current == model.ModeSupervision {
				// A supervised person saying they feel better is a
				// check-in, handled below, not a mode exit.
				break
			}
			return o.responder.InvalidStop(model.ModeTherapy, s.Current)
		}
		o.cancelTimer(s, msg.SubjectID)
		s.Reset()
		return o.responder.TherapyClosing()
	}

	// 4. Explicit start intents.
	switch {
	case intent == IntentStartSupervision:
		if cur, ok := s.SupervisionData(); ok && cur.Profile == supervisionTargetIn(msg.Text) {
			// Re-entering with the same request data is idempotent.
			return o.responder.SupervisionAmbient()
		}
		o.cancelTimer(s, msg.SubjectID)
		s.EnterSupervision(model.SupervisionData{
			Profile:   supervisionTargetIn(msg.Text),
			StartedAt: now,
		})
		return o.responder.SupervisionAmbient()

	case intent == IntentRequestParental:
		flavor := parentalFlavorIn(msg.Text)
		if d, ok := s.ParentalData(); ok && d.Flavor == flavor {
			return o.responder.Parental(flavor)
		}
		o.cancelTimer(s, msg.SubjectID)
		s.EnterParental(flavor, model.ParentalRequested, now)
		return o.responder.ParentalOpen(flavor)

	case s.PendingParental != "" && isConfirmation(msg.Text):
		flavor := s.PendingParental
		o.cancelTimer(s, msg.SubjectID)
		s.EnterParental(flavor, model.ParentalOffered, now)
		return o.responder.ParentalOpen(flavor)

	case intent == IntentEnterTherapy || s.Current == model.ModeTherapy:
		if s.Current != model.ModeTherapy {
			o.cancelTimer(s, msg.SubjectID)
			s.EnterTherapy()
		}
		return o.responder.Therapy()
	}

	// 5. Remain in the current mode.
	switch s.Current {
	case model.ModeSupervision:
		return o.superviseTurn(s, msg, now)
	case model.ModeParentalRole:
		d, _ := s.ParentalData()
		return o.responder.Parental(d.Flavor)
	default:
		return o.normalTurn(s, res)
	}
}

// superviseTurn handles a message attributed to the supervised person.
// A risk phrase (re)arms the escalation timer with a fresh deadline; any
// other message means the person checked back in and disarms it.
func (o *Orchestrator) superviseTurn(s *mode.State, msg model.InboundMessage, now time.Time) model.Directive {
	if o.classifier.SupervisionRisk(msg.Text) {
		payload := model.AlertEvent{
			SubjectID:   msg.SubjectID,
			Subject:     s.Subject,
			Caregiver:   s.Subject.Caregiver,
			LastMessage: msg.Text,
		}
		s.TimerID = o.escalation.Arm(msg.SubjectID, o.alertDeadline, payload)

		var caregiverName string
		if s.Subject.Caregiver != nil {
			caregiverName = s.Subject.Caregiver.Name
		}
		o.logger.Warn("supervision risk detected, escalation armed",
			"subject_id", msg.SubjectID,
			"deadline", o.alertDeadline)
		return o.responder.SupervisionRisk(caregiverName)
	}

	if s.TimerID != "" {
		o.cancelTimer(s, msg.SubjectID)
		return o.responder.SupervisionCheckIn()
	}
	return o.responder.SupervisionAmbient()
}

// normalTurn handles the no-intent, no-crisis remainder. Crisis-adjacent
// vulnerability triggers a proactive parental-role offer; the offer alone
// never changes the mode; a separate confirmation turn does.
func (o *Orchestrator) normalTurn(s *mode.State, res model.ClassificationResult) model.Directive {
	if res.Emotion.IsHopeless() || res.Emotion == model.EmotionLoneliness {
		if s.PendingParental == "" {
			s.PendingParental = model.ParentalMom
			return o.responder.ParentalOffer(s.PendingParental)
		}
		return o.responder.Support()
	}
	if res.Emotion.IsNegative() || res.Emotion == model.EmotionAnxiety || res.Emotion == model.EmotionFear {
		return o.responder.Support()
	}
	return o.responder.Normal()
}

// cancelTimer disarms the subject's escalation timer and clears the record's
// reference. Both happen with the record held, so a concurrent fire either
// sees the old reference before we clear it (and we cancelled the goroutine
// anyway) or finds it gone and drops as stale.
func (o *Orchestrator) cancelTimer(s *mode.State, subjectID string) {
	if s.TimerID == "" {
		return
	}
	o.escalation.Cancel(subjectID)
	s.TimerID = ""
}

// StartSupervision opens a supervision session with a full third-party
// profile, as submitted through the API rather than free-form chat.
func (o *Orchestrator) StartSupervision(subjectID string, subject model.Subject, data model.SupervisionData) model.Directive {
	s := o.registry.Acquire(subjectID)
	defer s.Release()

	s.Subject = subject
	if cur, ok := s.SupervisionData(); ok && cur.Profile == data.Profile {
		return o.responder.SupervisionAmbient()
	}
	o.cancelTimer(s, subjectID)
	s.EnterSupervision(data)
	o.logger.Info("supervision started",
		"subject_id", subjectID,
		"profile", data.Profile)
	return o.responder.SupervisionAmbient()
}

// StopSupervision ends a supervision session from the API.
func (o *Orchestrator) StopSupervision(subjectID string) model.Directive {
	s := o.registry.Acquire(subjectID)
	defer s.Release()

	if s.Current != model.ModeSupervision {
		return o.responder.InvalidStop(model.ModeSupervision, s.Current)
	}
	o.cancelTimer(s, subjectID)
	s.Reset()
	o.logger.Info("supervision stopped", "subject_id", subjectID)
	return o.responder.SupervisionClosing()
}

// Status reports the subject's current mode for the API.
func (o *Orchestrator) Status(subjectID string) model.ModeStatusResponse {
	s := o.registry.Acquire(subjectID)
	defer s.Release()

	return model.ModeStatusResponse{
		SubjectID:  subjectID,
		Mode:       s.Current,
		ModeData:   s.Data,
		TimerArmed: s.TimerID != "",
	}
}
