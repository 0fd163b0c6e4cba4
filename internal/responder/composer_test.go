package responder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careline-triage/internal/compliance"
	"github.com/wolfman30/careline-triage/internal/ehr"
	"github.com/wolfman30/careline-triage/internal/entities"
	"github.com/wolfman30/careline-triage/internal/intent"
	"github.com/wolfman30/careline-triage/internal/language"
	"github.com/wolfman30/careline-triage/internal/sentiment"
	"github.com/wolfman30/careline-triage/internal/triage"
)

func routine() triage.Result {
	return triage.Result{UrgencyLevel: triage.Routine, CareRecommendation: "Schedule a regular appointment with your provider."}
}

func containsOneOf(body string, options []string) bool {
	for _, o := range options {
		if strings.Contains(body, o) {
			return true
		}
	}
	return false
}

func TestCompose_EmergencyPrefix(t *testing.T) {
	c := NewSeededComposer(1)
	bag := entities.NewBag()
	bag[entities.Symptoms] = []string{"pain", "breath"}

	out := c.Compose(Input{
		Intent:    intent.Symptoms,
		Entities:  bag,
		Sentiment: sentiment.Result{Score: -0.25, Label: sentiment.Negative},
		Triage: triage.Result{
			UrgencyLevel:       triage.Emergency,
			CareRecommendation: "Call 911 or go to the nearest emergency room immediately.",
		},
	})

	assert.True(t, strings.HasPrefix(out, "[EMERGENCY] Call 911"), out)
	assert.True(t, containsOneOf(out, templates[bucketEmergency]), out)
	assert.False(t, containsOneOf(out, empathyPhrases), "empathy and urgency prefixes are exclusive")
}

func TestCompose_EmergencyIntentWithoutUrgentTriage(t *testing.T) {
	out := NewSeededComposer(2).Compose(Input{
		Intent:   intent.Emergency,
		Entities: entities.NewBag(),
		Triage:   routine(),
	})
	assert.True(t, containsOneOf(out, templates[bucketEmergency]), out)
	assert.False(t, strings.HasPrefix(out, "["))
}

func TestCompose_RoutineAppointment(t *testing.T) {
	out := NewSeededComposer(3).Compose(Input{
		Intent:    intent.Appointment,
		Entities:  entities.NewBag(),
		Sentiment: sentiment.Result{Label: sentiment.Neutral},
		Triage:    routine(),
	})
	assert.Contains(t, templates[string(intent.Appointment)], out)
}

func TestCompose_EmpathyPrefix(t *testing.T) {
	out := NewSeededComposer(4).Compose(Input{
		Intent:    intent.Billing,
		Entities:  entities.NewBag(),
		Sentiment: sentiment.Result{Score: -0.25, Label: sentiment.Negative},
		Triage:    routine(),
	})
	assert.True(t, containsOneOf(out[:40], empathyPhrases), out)
	assert.True(t, containsOneOf(out, templates[string(intent.Billing)]), out)
}

func TestCompose_PromptPrefixWinsOverEmpathy(t *testing.T) {
	out := NewSeededComposer(5).Compose(Input{
		Intent:    intent.General,
		Entities:  entities.NewBag(),
		Sentiment: sentiment.Result{Score: -0.4, Label: sentiment.Negative},
		Triage:    triage.Result{UrgencyLevel: triage.Prompt, CareRecommendation: "Schedule an appointment with your provider soon."},
	})
	assert.True(t, strings.HasPrefix(out, "[PROMPT] Schedule an appointment with your provider soon. "), out)
	assert.False(t, containsOneOf(out, empathyPhrases))
}

func TestCompose_EntityBuckets(t *testing.T) {
	symptoms := entities.NewBag()
	symptoms[entities.Symptoms] = []string{"headache", "fever", "headache"}
	symptoms[entities.MedicalConditions] = []string{"asthma"}

	out := NewSeededComposer(6).Compose(Input{Intent: intent.General, Entities: symptoms, Triage: routine()})
	assert.Contains(t, out, "headache and fever")

	conditions := entities.NewBag()
	conditions[entities.MedicalConditions] = []string{"diabetes"}
	out = NewSeededComposer(6).Compose(Input{Intent: intent.General, Entities: conditions, Triage: routine()})
	assert.Contains(t, out, "diabetes")
	assert.NotContains(t, out, conditionsPlaceholder)
}

func TestCompose_UnknownIntentFallsBack(t *testing.T) {
	out := NewSeededComposer(7).Compose(Input{Intent: "weather", Entities: entities.NewBag(), Triage: routine()})
	assert.Contains(t, templates[bucketOther], out)
}

func TestCompose_EHRLists(t *testing.T) {
	data := &ehr.PatientData{Medications: []string{"Lisinopril 10mg daily"}, Allergies: []string{"Penicillin"}}
	for seed := int64(0); seed < 10; seed++ {
		out := NewSeededComposer(seed).Compose(Input{
			Intent:   intent.Prescription,
			Entities: entities.NewBag(),
			Triage:   routine(),
			EHR:      data,
		})
		require.Contains(t, out, "Current medications on file:\n- Lisinopril 10mg daily")
		head := out[:strings.Index(out, "\n\n")]
		assert.Equal(t, strings.Contains(strings.ToLower(head), "allerg"), strings.Contains(out, "Allergies on file:\n- Penicillin"))
	}

	out := NewSeededComposer(1).Compose(Input{Intent: intent.Billing, Entities: entities.NewBag(), Triage: routine(), EHR: data})
	assert.NotContains(t, out, "on file")
}

func TestCompose_PHINotice(t *testing.T) {
	out := NewSeededComposer(8).Compose(Input{
		Intent:   intent.General,
		Entities: entities.NewBag(),
		Triage:   routine(),
		PHI:      compliance.CheckPHI("My SSN is 123-45-6789"),
	})
	assert.True(t, strings.HasSuffix(out, privacyNotice))
}

func TestCompose_Localizes(t *testing.T) {
	var calls []language.Code
	c := NewComposer(nil, func(text string, target language.Code) string {
		calls = append(calls, target)
		return "localized"
	})

	in := Input{Intent: intent.General, Entities: entities.NewBag(), Triage: routine()}
	assert.NotEqual(t, "localized", c.Compose(in))

	in.Language = language.Spanish
	assert.Equal(t, "localized", c.Compose(in))
	assert.Equal(t, []language.Code{language.Spanish}, calls)
}

func TestCompose_SeededIsReproducible(t *testing.T) {
	in := Input{Intent: intent.Technical, Entities: entities.NewBag(), Triage: routine()}
	a, b := NewSeededComposer(42), NewSeededComposer(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Compose(in), b.Compose(in))
	}
}
