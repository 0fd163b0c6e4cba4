package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careline-triage/internal/textproc"
)

func extract(text string) Bag {
	return NewExtractor().Extract(textproc.Tokenize(text), text)
}

func TestExtract_ChestPain(t *testing.T) {
	bag := extract("I'm experiencing chest pain and shortness of breath")

	assert.Equal(t, []string{"pain", "shortness", "breath"}, bag[Symptoms])
	assert.Equal(t, []string{"chest"}, bag[BodyParts])
	assert.Empty(t, bag[Medications])
}

func TestExtract_AllCategoriesPresent(t *testing.T) {
	bag := extract("hello")
	require.Len(t, bag, len(Categories))
	for _, c := range Categories {
		assert.NotNil(t, bag[c], c)
		assert.Empty(t, bag[c], c)
	}

	raw, err := json.Marshal(bag)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"medications":[]`)
}

func TestExtract_Categories(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category Category
		want     []string
	}{
		{"medication names", "I take Lisinopril and aspirin daily", Medications, []string{"lisinopril", "aspirin"}},
		{"medication suffix", "they gave me amoxicillin", Medications, []string{"amoxicillin"}},
		{"conditions", "my diabetes and asthma are worse", MedicalConditions, []string{"diabetes", "asthma"}},
		{"duplicates kept", "headache, headache, still a headache", Symptoms, []string{"headache", "headache", "headache"}},
		{"body parts", "my knee and my back", BodyParts, []string{"knee", "back"}},
		{"slashed date", "seen on 3/14/2024 and tomorrow", Dates, []string{"3/14/2024", "tomorrow"}},
		{"long date", "since March 3rd, 2024", Dates, []string{"March 3rd, 2024"}},
		{"email", "write to nurse@clinic.org", Emails, []string{"nurse@clinic.org"}},
		{"phone", "call 555-123-4567", PhoneNumbers, []string{"555-123-4567"}},
		{"name", "Dr visit with Maria Lopez", Names, []string{"Maria Lopez"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(tt.text)[tt.category])
		})
	}
}

func TestBag_Has(t *testing.T) {
	bag := extract("my stomach hurts")
	assert.True(t, bag.Has(Symptoms))
	assert.True(t, bag.Has(BodyParts))
	assert.False(t, bag.Has(MedicalConditions))
}
