// Package pipeline runs a patient message through classification, entity
// extraction, sentiment, PHI compliance, triage, provider recommendation and
// response composition, then records the analysis in the user's context.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/careline-triage/internal/compliance"
	"github.com/wolfman30/careline-triage/internal/config"
	"github.com/wolfman30/careline-triage/internal/conversation"
	"github.com/wolfman30/careline-triage/internal/ehr"
	"github.com/wolfman30/careline-triage/internal/entities"
	"github.com/wolfman30/careline-triage/internal/intent"
	"github.com/wolfman30/careline-triage/internal/language"
	"github.com/wolfman30/careline-triage/internal/observability/metrics"
	"github.com/wolfman30/careline-triage/internal/providers"
	"github.com/wolfman30/careline-triage/internal/responder"
	"github.com/wolfman30/careline-triage/internal/sentiment"
	"github.com/wolfman30/careline-triage/internal/support"
	"github.com/wolfman30/careline-triage/internal/textproc"
	"github.com/wolfman30/careline-triage/internal/tickets"
	"github.com/wolfman30/careline-triage/internal/triage"
	"github.com/wolfman30/careline-triage/internal/voice"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

var tracer = otel.Tracer("careline/pipeline")

// Features are the toggles consulted on every request.
type Features = config.Features

const (
	ChannelText    = "text"
	ChannelVoice   = "voice"
	ChannelWebchat = "webchat"
)

// Profile is what the user store knows about the sender.
type Profile struct {
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	PrefersVoice      bool   `json:"prefersVoice,omitempty"`
	VoiceGender       string `json:"voiceGender,omitempty"`
	EHRConsent        bool   `json:"ehrConsent,omitempty"`
	PatientID         string `json:"patientId,omitempty"`
	Location          string `json:"location,omitempty"`
}

// Request is one inbound message.
type Request struct {
	UserID    string  `json:"userId"`
	Message   string  `json:"message"`
	TicketID  string  `json:"ticketId,omitempty"`
	MessageID string  `json:"messageId,omitempty"`
	Channel   string  `json:"channel,omitempty"`
	Profile   Profile `json:"profile"`
}

// Result is the full analysis of one message.
type Result struct {
	MessageID       string                    `json:"messageId"`
	Language        language.Code             `json:"language"`
	Intent          intent.Intent             `json:"intent"`
	Entities        entities.Bag              `json:"entities"`
	Tokens          []string                  `json:"tokens"`
	Sentiment       sentiment.Result          `json:"sentiment"`
	Compliance      compliance.PHIFinding     `json:"compliance"`
	RedactedMessage string                    `json:"redactedMessage,omitempty"`
	Triage          triage.Result             `json:"triage"`
	Providers       providers.Recommendation  `json:"providers"`
	Response        string                    `json:"response"`
	EHRContextUsed  bool                      `json:"ehrContextUsed"`
	Transcription   *voice.Transcription      `json:"transcription,omitempty"`
	Speech          *voice.Speech             `json:"speech,omitempty"`
	PriorityUpdate  *tickets.PriorityUpdate   `json:"priorityUpdate,omitempty"`
	Escalated       bool                      `json:"escalated"`
	Degraded        []string                  `json:"degraded,omitempty"`
	Scores          map[intent.Intent]float64 `json:"scores,omitempty"`
}

// Escalator raises staff escalations for urgent and emergency messages.
type Escalator interface {
	Escalate(ctx context.Context, req support.EmergencyRequest) (*support.Escalation, error)
}

// EscalationNotifier tells the patient that staff were alerted, on whatever
// live channel they have open. It must not block.
type EscalationNotifier interface {
	NotifyEscalation(ctx context.Context, esc *support.Escalation)
}

type notifierSlot struct {
	n EscalationNotifier
}

// Config wires an Engine. Model is required; everything else is optional.
type Config struct {
	Model       *intent.Model
	Contexts    conversation.Store
	Composer    *responder.Composer
	Audit       compliance.AuditLogger
	Disclaimer  *compliance.DisclaimerService
	EHR         ehr.Client
	Voice       voice.Service
	Tickets     tickets.Publisher
	Escalations Escalator
	Metrics     *metrics.PipelineMetrics
	Logger      *logging.Logger
	Features    Features
	Now         func() time.Time
	NewID       func() string
}

// Engine is safe for concurrent use. Only the context store write mutates
// shared state.
type Engine struct {
	model       *intent.Model
	extractor   *entities.Extractor
	scorer      *sentiment.Scorer
	triager     *triage.Engine
	recommender *providers.Recommender
	phi         *compliance.PHIDetector
	phiStrict   *compliance.PHIDetector
	contexts    conversation.Store
	composer    *responder.Composer
	audit       compliance.AuditLogger
	disclaimer  *compliance.DisclaimerService
	ehr         ehr.Client
	voice       voice.Service
	tickets     tickets.Publisher
	escalations Escalator
	notifier    atomic.Pointer[notifierSlot]
	metrics     *metrics.PipelineMetrics
	logger      *logging.Logger
	features    atomic.Pointer[Features]
	now         func() time.Time
	newID       func() string
}

// NewEngine validates cfg and fills defaults.
func NewEngine(cfg Config) (*Engine, error) {
	if !cfg.Model.Ready() {
		return nil, fmt.Errorf("pipeline: new engine: %w", intent.ErrClassifierUnready)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Contexts == nil {
		cfg.Contexts = conversation.NewMemoryStore(conversation.Options{}, cfg.Now)
	}
	if cfg.Composer == nil {
		cfg.Composer = responder.NewComposer(nil, nil)
	}

	e := &Engine{
		model:       cfg.Model,
		extractor:   entities.NewExtractor(),
		scorer:      sentiment.NewScorer(),
		triager:     triage.NewEngine(),
		recommender: providers.NewRecommender(providers.Limits{}),
		phi:         compliance.NewPHIDetector(compliance.PHIOptions{}),
		phiStrict:   compliance.NewPHIDetector(compliance.PHIOptions{RedactNamesDates: true}),
		contexts:    cfg.Contexts,
		composer:    cfg.Composer,
		audit:       cfg.Audit,
		disclaimer:  cfg.Disclaimer,
		ehr:         cfg.EHR,
		voice:       cfg.Voice,
		tickets:     cfg.Tickets,
		escalations: cfg.Escalations,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.Component("pipeline"),
		now:         cfg.Now,
		newID:       cfg.NewID,
	}
	e.SetFeatures(cfg.Features)
	return e, nil
}

// Features returns the toggles currently in effect.
func (e *Engine) Features() Features {
	return *e.features.Load()
}

// SetFeatures replaces the toggles; in-flight requests keep the old set.
func (e *Engine) SetFeatures(f Features) {
	e.features.Store(&f)
}

// SetEscalationNotifier registers the live-channel notifier. Channels are
// built on top of the engine, so this is set after construction.
func (e *Engine) SetEscalationNotifier(n EscalationNotifier) {
	e.notifier.Store(&notifierSlot{n: n})
}

// Contexts exposes the conversation store for read access and lifecycle.
func (e *Engine) Contexts() conversation.Store {
	return e.contexts
}

func (e *Engine) detector(f Features) *compliance.PHIDetector {
	if f.RedactNamesDates {
		return e.phiStrict
	}
	return e.phi
}

// CheckPHI runs the PHI detectors without analyzing the message.
func (e *Engine) CheckPHI(text string) (compliance.PHIFinding, error) {
	if err := validateMessage(text); err != nil {
		return compliance.PHIFinding{}, err
	}
	return e.detector(e.Features()).Check(text), nil
}

// RedactPHI returns text with redactable PHI replaced by placeholders.
func (e *Engine) RedactPHI(text string) (string, error) {
	if err := validateMessage(text); err != nil {
		return "", err
	}
	return e.detector(e.Features()).Redact(text), nil
}

// Triage scores and triages a message without composing a reply or
// touching the context store.
func (e *Engine) Triage(message string) (triage.Result, error) {
	if err := validateMessage(message); err != nil {
		return triage.Result{}, err
	}
	tokens := textproc.Tokenize(message)
	bag := e.extractor.Extract(tokens, message)
	return e.triager.Triage(message, e.scorer.Score(tokens), bag[entities.Symptoms]), nil
}

// Analyze runs the full pipeline. Only invalid input or an unready
// classifier fail the call; secondary services degrade.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := validateMessage(req.Message); err != nil {
		return nil, err
	}
	return e.analyze(ctx, req, nil)
}

// VoiceRequest is an audio message. Profile.PreferredLanguage doubles as the
// transcription hint.
type VoiceRequest struct {
	Request
	Audio []byte `json:"-"`
}

// AnalyzeVoice transcribes audio and analyzes the transcript.
func (e *Engine) AnalyzeVoice(ctx context.Context, req VoiceRequest) (*Result, error) {
	features := e.Features()
	if !features.VoiceInput || e.voice == nil {
		return nil, fmt.Errorf("pipeline: voice input: %w", ErrConfigurationDisabled)
	}
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("pipeline: voice input: %w", ErrInvalidInput)
	}

	tr, err := e.voice.Transcribe(ctx, req.Audio, req.Profile.PreferredLanguage)
	if err != nil {
		e.metrics.ObserveUpstreamFailure("voice")
		if errors.Is(err, voice.ErrEmptyAudio) {
			return nil, fmt.Errorf("pipeline: transcribe: %w", ErrInvalidInput)
		}
		e.logger.Warn("voice transcription failed", "user_id", req.UserID, "error", err)
		return nil, fmt.Errorf("pipeline: transcribe: %w: %v", ErrUpstreamUnavailable, err)
	}
	if err := validateMessage(tr.Text); err != nil {
		return nil, err
	}

	inner := req.Request
	inner.Message = tr.Text
	if inner.Channel == "" {
		inner.Channel = ChannelVoice
	}
	if inner.Profile.PreferredLanguage == "" {
		inner.Profile.PreferredLanguage = tr.LanguageDetected
	}
	return e.analyze(ctx, inner, tr)
}

func (e *Engine) analyze(ctx context.Context, req Request, tr *voice.Transcription) (*Result, error) {
	start := e.now()
	features := e.Features()
	if req.Channel == "" {
		req.Channel = ChannelText
	}
	if req.MessageID == "" {
		req.MessageID = e.newID()
	}

	ctx, span := tracer.Start(ctx, "pipeline.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("careline.channel", req.Channel),
		attribute.Bool("careline.has_ticket", req.TicketID != ""),
	)

	tokens := textproc.Tokenize(req.Message)
	category, err := e.model.ClassifyTokens(tokens)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classify")
		return nil, fmt.Errorf("pipeline: classify: %w", err)
	}
	bag := e.extractor.Extract(tokens, req.Message)
	sent := e.scorer.Score(tokens)

	detector := e.detector(features)
	finding := detector.Check(req.Message)
	stored := req.Message
	redacted := false
	if finding.ContainsPHI && features.AutoRedact {
		stored = detector.Redact(req.Message)
		redacted = stored != req.Message
	}

	tri := e.triager.Triage(req.Message, sent, bag[entities.Symptoms])
	recs := e.recommender.RecommendWithLimits(req.Message, bag[entities.Symptoms], req.Profile.Location, providers.Limits{
		MaxSpecialties:   features.MaxSpecialties,
		MaxProviderTypes: features.MaxProviderTypes,
	})

	lang := language.Detect(req.Message)
	if req.Profile.PreferredLanguage != "" {
		lang = language.Normalize(req.Profile.PreferredLanguage)
	}

	span.SetAttributes(
		attribute.String("careline.intent", string(category)),
		attribute.String("careline.urgency_level", string(tri.UrgencyLevel)),
		attribute.Bool("careline.contains_phi", finding.ContainsPHI),
		attribute.String("careline.language", string(lang)),
	)

	res := &Result{
		MessageID:     req.MessageID,
		Language:      lang,
		Intent:        category,
		Entities:      bag,
		Tokens:        tokens,
		Sentiment:     sent,
		Compliance:    finding,
		Triage:        tri,
		Providers:     recs,
		Transcription: tr,
	}
	if redacted {
		res.RedactedMessage = stored
	}

	patient := e.fetchPatientData(ctx, req, features, res)
	res.EHRContextUsed = patient != nil

	reply := e.composer.Compose(responder.Input{
		Message:   req.Message,
		Intent:    category,
		Entities:  bag,
		Sentiment: sent,
		Triage:    tri,
		PHI:       finding,
		EHR:       patient,
		Language:  lang,
	})
	if features.Disclaimer {
		reply = e.disclaimer.Append(ctx, req.UserID, reply)
	}
	res.Response = reply

	if features.VoiceOutput && req.Profile.PrefersVoice && e.voice != nil {
		speech, err := e.voice.Synthesize(ctx, reply, string(lang), req.Profile.VoiceGender)
		if err != nil {
			e.degrade(res, "voice", req.UserID, err)
		} else {
			res.Speech = speech
		}
	}

	if finding.ContainsPHI && features.AuditPHI && e.audit != nil {
		if err := e.audit.LogPHIDetected(ctx, req.UserID, finding, redacted); err != nil {
			e.logger.Warn("phi audit failed", "user_id", req.UserID, "error", err)
		}
	}

	e.recordContext(ctx, req, stored, res)
	e.publishPriority(ctx, req, features, res)
	e.escalate(ctx, req, features, res)

	e.metrics.ObservePHI(phiCounts(finding))
	e.metrics.ObserveAnalysis(req.Channel, string(category), string(tri.UrgencyLevel), e.now().Sub(start).Seconds())

	if features.Debug {
		if scores, err := e.model.Scores(req.Message); err == nil {
			res.Scores = scores
		}
	}

	e.logger.Debug("message analyzed",
		"user_id", req.UserID,
		"message_id", req.MessageID,
		"intent", category,
		"urgency_level", tri.UrgencyLevel,
		"phi_categories", finding.Categories(),
	)
	return res, nil
}

func (e *Engine) fetchPatientData(ctx context.Context, req Request, features Features, res *Result) *ehr.PatientData {
	if !features.EHR || e.ehr == nil || req.Profile.PatientID == "" {
		return nil
	}
	if features.EHRRequireConsent && !req.Profile.EHRConsent {
		return nil
	}
	data, err := e.ehr.FetchPatientData(ctx, req.Profile.PatientID, ehr.AllCategories)
	if err != nil {
		e.degrade(res, "ehr", req.UserID, err)
		return nil
	}
	return data
}

func (e *Engine) recordContext(ctx context.Context, req Request, stored string, res *Result) {
	if req.UserID == "" {
		return
	}
	entry := conversation.Entry{
		Message: stored,
		Analysis: conversation.Analysis{
			Intent:    res.Intent,
			Entities:  res.Entities,
			Tokens:    res.Tokens,
			Sentiment: res.Sentiment,
		},
		Language:  string(res.Language),
		Timestamp: e.now(),
	}
	if err := e.contexts.Update(ctx, req.UserID, entry); err != nil {
		e.logger.Warn("context update failed", "user_id", req.UserID, "error", err)
	}
}

func (e *Engine) publishPriority(ctx context.Context, req Request, features Features, res *Result) {
	if !features.AutoPrioritize || e.tickets == nil || req.TicketID == "" {
		return
	}
	priority, ok := tickets.PriorityFor(string(res.Triage.UrgencyLevel))
	if !ok {
		return
	}
	update := tickets.PriorityUpdate{
		TicketID:     req.TicketID,
		UserID:       req.UserID,
		Priority:     priority,
		UrgencyLevel: string(res.Triage.UrgencyLevel),
		Reason:       res.Triage.CareRecommendation,
		CreatedAt:    e.now().UTC(),
	}
	if err := e.tickets.Publish(ctx, update); err != nil {
		e.logger.Warn("ticket priority publish failed", "ticket_id", req.TicketID, "error", err)
		e.metrics.ObserveUpstreamFailure("tickets")
		return
	}
	res.PriorityUpdate = &update
}

func (e *Engine) escalate(ctx context.Context, req Request, features Features, res *Result) {
	if !features.Escalate || !res.Triage.UrgencyLevel.IsUrgent() {
		return
	}
	level := string(res.Triage.UrgencyLevel)
	if res.Triage.UrgencyLevel == triage.Emergency && e.audit != nil {
		if err := e.audit.LogEmergency(ctx, req.UserID, level, res.Triage.CareRecommendation); err != nil {
			e.logger.Warn("emergency audit failed", "user_id", req.UserID, "error", err)
		}
	}
	if e.escalations == nil {
		return
	}
	esc, err := e.escalations.Escalate(ctx, support.EmergencyRequest{
		UserID:         req.UserID,
		TicketID:       req.TicketID,
		MessageID:      req.MessageID,
		UrgencyLevel:   level,
		Recommendation: res.Triage.CareRecommendation,
		Symptoms:       res.Triage.DetectedSymptoms,
	})
	if err != nil {
		e.logger.Warn("escalation failed", "user_id", req.UserID, "error", err)
		e.metrics.ObserveUpstreamFailure("escalations")
		return
	}
	res.Escalated = true
	e.metrics.ObserveEscalation(level)
	if slot := e.notifier.Load(); slot != nil && slot.n != nil {
		slot.n.NotifyEscalation(ctx, esc)
	}
}

func (e *Engine) degrade(res *Result, service, userID string, err error) {
	e.logger.Warn("upstream unavailable",
		"service", service,
		"user_id", userID,
		"error", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err),
	)
	e.metrics.ObserveUpstreamFailure(service)
	res.Degraded = append(res.Degraded, service)
}

func validateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: message is not valid UTF-8", ErrInvalidInput)
	}
	return nil
}

func phiCounts(f compliance.PHIFinding) map[string]int {
	if len(f.DetectedPHI) == 0 {
		return nil
	}
	out := make(map[string]int, len(f.DetectedPHI))
	for cat, n := range f.DetectedPHI {
		out[string(cat)] = n
	}
	return out
}
