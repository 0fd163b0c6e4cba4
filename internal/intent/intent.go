// Package intent classifies patient messages into support intents using a
// multinomial naive Bayes model trained once at startup.
package intent

// Intent is the classified purpose of a patient message.
type Intent string

const (
	General      Intent = "general"
	Appointment  Intent = "appointment"
	Prescription Intent = "prescription"
	Billing      Intent = "billing"
	Technical    Intent = "technical"
	Symptoms     Intent = "symptoms"
	Preventive   Intent = "preventive"
	Emergency    Intent = "emergency"
	MentalHealth Intent = "mental_health"
)

// All lists every intent in model order. Ties between equally likely intents
// resolve to the one listed first.
var All = []Intent{
	General,
	Appointment,
	Prescription,
	Billing,
	Technical,
	Symptoms,
	Preventive,
	Emergency,
	MentalHealth,
}

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	for _, known := range All {
		if i == known {
			return true
		}
	}
	return false
}

// Example is one labeled training message.
type Example struct {
	Text     string
	Category Intent
}
