package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/careline-triage/internal/textproc"
)

func score(text string) Result {
	return NewScorer().Score(textproc.Tokenize(text))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		label  Label
		urgent bool
	}{
		{"chest pain", "I'm experiencing chest pain and shortness of breath", Negative, false},
		{"neutral request", "I need to schedule a checkup", Neutral, false},
		{"grateful", "thanks so much, great help", Positive, false},
		{"strongly negative", "terrible awful pain", Negative, true},
		{"urgent keyword with neutral text", "please call me asap about my refill", Neutral, true},
		{"negated positive", "not good", Negative, true},
		{"negated negative", "no pain", Positive, false},
		{"negation within window", "not very good", Negative, true},
		{"negation expires", "not sure why, but good", Positive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score(tt.text)
			assert.Equal(t, tt.label, got.Label, "score %.3f", got.Score)
			assert.Equal(t, tt.urgent, got.IsUrgent)
		})
	}
}

func TestScore_NegationWindow(t *testing.T) {
	// "good" is three tokens past the negator, outside the window.
	assert.InDelta(t, 3.0/5.0, score("not sure why, but good").Score, 1e-9)
	// One negator flips one hit: "good" is flipped, "great" is not.
	assert.InDelta(t, 0.0, score("not good great").Score, 1e-9)
}

func TestScore_Normalized(t *testing.T) {
	got := score("I'm experiencing chest pain and shortness of breath")
	assert.InDelta(t, -0.25, got.Score, 1e-9)
}

func TestScore_Unclamped(t *testing.T) {
	got := score("wonderful")
	assert.InDelta(t, 4.0, got.Score, 1e-9)
}

func TestScore_Empty(t *testing.T) {
	got := NewScorer().Score(nil)
	assert.Equal(t, Result{Label: Neutral}, got)
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer()
	tokens := textproc.Tokenize("I am worried and scared, the pain is worse")
	first := s.Score(tokens)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Score(tokens))
	}
}
