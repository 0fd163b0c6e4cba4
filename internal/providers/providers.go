// Package providers maps symptoms and keywords in a message to medical
// specialties and provider types.
package providers

import (
	"strings"
)

const (
	Cardiology       = "Cardiology"
	Pulmonology      = "Pulmonology"
	Gastroenterology = "Gastroenterology"
	Neurology        = "Neurology"
	Orthopedics      = "Orthopedics"
	Dermatology      = "Dermatology"
	Psychiatry       = "Psychiatry"
	PrimaryCare      = "Primary Care"
)

type keywordSpecialty struct {
	keyword   string
	specialty string
}

// Body-system keyword table. Order decides specialty order on ties.
var keywordTable = []keywordSpecialty{
	// cardiovascular
	{"chest pain", Cardiology},
	{"heart", Cardiology},
	{"palpitation", Cardiology},
	{"blood pressure", Cardiology},
	{"hypertension", Cardiology},
	// respiratory
	{"breath", Pulmonology},
	{"cough", Pulmonology},
	{"wheez", Pulmonology},
	{"asthma", Pulmonology},
	{"lung", Pulmonology},
	// digestive
	{"stomach", Gastroenterology},
	{"nausea", Gastroenterology},
	{"vomit", Gastroenterology},
	{"diarrhea", Gastroenterology},
	{"constipat", Gastroenterology},
	{"abdominal", Gastroenterology},
	// neurological
	{"headache", Neurology},
	{"migraine", Neurology},
	{"dizz", Neurology},
	{"numb", Neurology},
	{"seizure", Neurology},
	// musculoskeletal
	{"back pain", Orthopedics},
	{"joint", Orthopedics},
	{"knee", Orthopedics},
	{"fracture", Orthopedics},
	{"sprain", Orthopedics},
	// dermatological
	{"rash", Dermatology},
	{"skin", Dermatology},
	{"itch", Dermatology},
	{"acne", Dermatology},
	// psychiatric
	{"anxiety", Psychiatry},
	{"depress", Psychiatry},
	{"panic", Psychiatry},
	{"insomnia", Psychiatry},
	// general
	{"fever", PrimaryCare},
	{"fatigue", PrimaryCare},
	{"checkup", PrimaryCare},
}

var providerTypes = map[string][]string{
	PrimaryCare: {"Family Medicine Physician", "Internal Medicine Physician", "Nurse Practitioner"},
	Psychiatry:  {"Psychiatrist", "Psychologist", "Licensed Clinical Social Worker"},
}

// Limits caps the returned lists. Zero means uncapped.
type Limits struct {
	MaxSpecialties   int
	MaxProviderTypes int
}

// Recommendation is the recommender's output.
type Recommendation struct {
	Specialties   []string `json:"specialties"`
	ProviderTypes []string `json:"providerTypes"`
	Location      string   `json:"location,omitempty"`
}

// Recommender is immutable and safe for concurrent use.
type Recommender struct {
	limits Limits
}

// NewRecommender returns a recommender with the given caps.
func NewRecommender(limits Limits) *Recommender {
	return &Recommender{limits: limits}
}

// Recommend scans message and each symptom for table keywords. Every hit
// adds its specialty once, in first-hit order. Primary Care is the default.
func (r *Recommender) Recommend(message string, symptoms []string, location string) Recommendation {
	return r.recommend(message, symptoms, location, r.limits)
}

// RecommendWithLimits is Recommend with per-call caps.
func (r *Recommender) RecommendWithLimits(message string, symptoms []string, location string, limits Limits) Recommendation {
	return r.recommend(message, symptoms, location, limits)
}

func (r *Recommender) recommend(message string, symptoms []string, location string, limits Limits) Recommendation {
	texts := make([]string, 0, len(symptoms)+1)
	texts = append(texts, strings.ToLower(message))
	for _, s := range symptoms {
		texts = append(texts, strings.ToLower(s))
	}

	var specialties []string
	seen := make(map[string]struct{})
	for _, text := range texts {
		for _, entry := range keywordTable {
			if !strings.Contains(text, entry.keyword) {
				continue
			}
			if _, ok := seen[entry.specialty]; ok {
				continue
			}
			seen[entry.specialty] = struct{}{}
			specialties = append(specialties, entry.specialty)
		}
	}
	if len(specialties) == 0 {
		specialties = []string{PrimaryCare}
	}
	specialties = capList(specialties, limits.MaxSpecialties)

	types := []string{}
	for _, sp := range specialties {
		if mapped, ok := providerTypes[sp]; ok {
			types = append(types, mapped...)
			continue
		}
		types = append(types, sp+" Specialist")
	}

	return Recommendation{
		Specialties:   specialties,
		ProviderTypes: capList(types, limits.MaxProviderTypes),
		Location:      location,
	}
}

func capList(list []string, limit int) []string {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
