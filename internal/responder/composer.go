// Package responder composes the reply sent back to the patient from the
// analysis signals.
package responder

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/careline-triage/internal/compliance"
	"github.com/wolfman30/careline-triage/internal/ehr"
	"github.com/wolfman30/careline-triage/internal/entities"
	"github.com/wolfman30/careline-triage/internal/intent"
	"github.com/wolfman30/careline-triage/internal/language"
	"github.com/wolfman30/careline-triage/internal/sentiment"
	"github.com/wolfman30/careline-triage/internal/triage"
)

// Input carries every signal the composer consumes.
type Input struct {
	Message   string
	Intent    intent.Intent
	Entities  entities.Bag
	Sentiment sentiment.Result
	Triage    triage.Result
	PHI       compliance.PHIFinding
	// EHR is nil unless record access was permitted and succeeded.
	EHR      *ehr.PatientData
	Language language.Code
}

// Localizer translates composed text.
type Localizer func(text string, target language.Code) string

// Composer picks and fills reply templates. Safe for concurrent use.
type Composer struct {
	mu       sync.Mutex
	rng      *rand.Rand
	localize Localizer
}

// NewComposer returns a composer drawing from rng. A nil rng is seeded from
// the clock; a nil localizer uses language.Localize.
func NewComposer(rng *rand.Rand, localize Localizer) *Composer {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	if localize == nil {
		localize = language.Localize
	}
	return &Composer{rng: rng, localize: localize}
}

// NewSeededComposer returns a composer with a deterministic template order.
func NewSeededComposer(seed int64) *Composer {
	return NewComposer(rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)), nil)
}

// Compose builds the reply. Bucket precedence is emergency, then symptom
// entities, then condition entities, then the classified intent.
func (c *Composer) Compose(in Input) string {
	body := c.pick(templates[selectBucket(in)])
	body = strings.NewReplacer(
		symptomsPlaceholder, joinEntities(in.Entities[entities.Symptoms]),
		conditionsPlaceholder, joinEntities(in.Entities[entities.MedicalConditions]),
	).Replace(body)

	body += ehrLists(body, in.EHR)

	switch {
	case in.Triage.UrgencyLevel != "" && in.Triage.UrgencyLevel != triage.Routine:
		body = fmt.Sprintf("[%s] %s %s",
			strings.ToUpper(string(in.Triage.UrgencyLevel)), in.Triage.CareRecommendation, body)
	case in.Sentiment.Label == sentiment.Negative && !in.Sentiment.IsUrgent:
		body = c.pick(empathyPhrases) + " " + body
	}

	if in.PHI.ContainsPHI {
		body += " " + privacyNotice
	}

	if in.Language != "" && in.Language != language.English {
		body = c.localize(body, in.Language)
	}
	return body
}

func selectBucket(in Input) string {
	switch {
	case in.Intent == intent.Emergency || in.Triage.UrgencyLevel.IsUrgent():
		return bucketEmergency
	case in.Entities.Has(entities.Symptoms):
		return bucketSymptoms
	case in.Entities.Has(entities.MedicalConditions):
		return bucketConditions
	}
	if _, ok := templates[string(in.Intent)]; ok {
		return string(in.Intent)
	}
	return bucketOther
}

func (c *Composer) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	c.mu.Lock()
	i := c.rng.IntN(len(options))
	c.mu.Unlock()
	return options[i]
}

// joinEntities renders up to three distinct matches as "a, b and c".
func joinEntities(list []string) string {
	var uniq []string
	seen := make(map[string]struct{})
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
		if len(uniq) == 3 {
			break
		}
	}
	switch len(uniq) {
	case 0:
		return "symptoms"
	case 1:
		return uniq[0]
	default:
		return strings.Join(uniq[:len(uniq)-1], ", ") + " and " + uniq[len(uniq)-1]
	}
}

func ehrLists(body string, data *ehr.PatientData) string {
	if data == nil {
		return ""
	}
	lower := strings.ToLower(body)
	var b strings.Builder
	if strings.Contains(lower, "medication") && len(data.Medications) > 0 {
		b.WriteString("\n\nCurrent medications on file:")
		for _, m := range data.Medications {
			b.WriteString("\n- " + m)
		}
	}
	if strings.Contains(lower, "allerg") && len(data.Allergies) > 0 {
		b.WriteString("\n\nAllergies on file:")
		for _, a := range data.Allergies {
			b.WriteString("\n- " + a)
		}
	}
	return b.String()
}
