// Package triage assigns a clinical urgency level and care pathway to a
// patient message.
package triage

import (
	"strings"

	"github.com/wolfman30/careline-triage/internal/sentiment"
)

// Level is an urgency level. Levels are ordered by severity.
type Level string

const (
	Routine   Level = "routine"
	Prompt    Level = "prompt"
	Urgent    Level = "urgent"
	Emergency Level = "emergency"
)

// Severity orders levels from 0 (routine) to 3 (emergency).
func (l Level) Severity() int {
	switch l {
	case Emergency:
		return 3
	case Urgent:
		return 2
	case Prompt:
		return 1
	default:
		return 0
	}
}

// IsUrgent reports whether the level is urgent or emergency.
func (l Level) IsUrgent() bool {
	return l.Severity() >= Urgent.Severity()
}

// Result is the triage outcome for one message.
type Result struct {
	UrgencyLevel        Level    `json:"urgencyLevel"`
	CareRecommendation  string   `json:"careRecommendation"`
	Timeframe           string   `json:"timeframe"`
	DetectedSymptoms    []string `json:"detectedSymptoms"`
	RequiresHumanReview bool     `json:"requiresHumanReview"`
}

const promptScoreThreshold = -0.3

type pathway struct {
	recommendation string
	timeframe      string
}

var pathways = map[Level]pathway{
	Emergency: {"Call 911 or go to the nearest emergency room immediately.", "immediately"},
	Urgent:    {"Seek urgent care today or call your provider's after-hours line.", "today"},
	Prompt:    {"Schedule an appointment with your provider soon.", "within 1-2 days"},
	Routine:   {"Schedule a regular appointment with your provider.", "within 1-2 weeks"},
}

// Matched as lower-case substrings of the whole message so phrases match.
var emergencyKeywords = []string{
	"chest pain", "can't breathe", "cant breathe", "cannot breathe", "not breathing",
	"difficulty breathing", "unconscious", "severe bleeding", "heart attack", "stroke",
	"suicid", "kill myself", "overdose", "seizure", "anaphylaxis", "choking", "passed out",
}

var urgentKeywords = []string{
	"high fever", "broken bone", "fracture", "severe pain", "allergic reaction",
	"deep cut", "stitches", "vomiting blood", "blood in", "dehydrat", "can't walk",
	"infection", "burn", "sprain", "spreading rash",
}

// Engine evaluates the triage rules. It is immutable and safe for
// concurrent use.
type Engine struct {
	emergency []string
	urgent    []string
}

// NewEngine returns an engine with the built-in keyword lists.
func NewEngine() *Engine {
	return &Engine{emergency: emergencyKeywords, urgent: urgentKeywords}
}

// Triage applies the rules in order: emergency keywords, then urgent
// keywords or urgent sentiment, then a strongly negative score, else
// routine. symptoms are the extracted symptom entities.
func (e *Engine) Triage(message string, sent sentiment.Result, symptoms []string) Result {
	lower := strings.ToLower(message)

	emergencyHits := matchAll(lower, e.emergency)
	urgentHits := matchAll(lower, e.urgent)

	var level Level
	switch {
	case len(emergencyHits) > 0:
		level = Emergency
	case len(urgentHits) > 0 || sent.IsUrgent:
		level = Urgent
	case sent.Score < promptScoreThreshold:
		level = Prompt
	default:
		level = Routine
	}

	detected := make([]string, 0, len(emergencyHits)+len(urgentHits)+len(symptoms))
	seen := make(map[string]struct{})
	for _, group := range [][]string{emergencyHits, urgentHits, symptoms} {
		for _, s := range group {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			detected = append(detected, s)
		}
	}

	p := pathways[level]
	return Result{
		UrgencyLevel:        level,
		CareRecommendation:  p.recommendation,
		Timeframe:           p.timeframe,
		DetectedSymptoms:    detected,
		RequiresHumanReview: level != Routine,
	}
}

func matchAll(lower string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
