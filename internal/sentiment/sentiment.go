// Package sentiment scores patient messages with an AFINN-style lexicon.
package sentiment

import (
	"github.com/wolfman30/careline-triage/internal/textproc"
)

// Label is the coarse polarity of a message.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
	urgentThreshold   = -0.5

	// negationWindow is how many tokens after a negator can be flipped.
	negationWindow = 2
)

// Result is the sentiment of one message.
type Result struct {
	Score    float64 `json:"score"`
	Label    Label   `json:"label"`
	IsUrgent bool    `json:"isUrgent"`
}

// Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	valence  map[string]int
	negators map[string]struct{}
	urgent   map[string]struct{}
}

// NewScorer builds a scorer over the built-in lexicon.
func NewScorer() *Scorer {
	s := &Scorer{
		valence:  make(map[string]int, len(afinn)),
		negators: make(map[string]struct{}, len(negators)),
		urgent:   make(map[string]struct{}, len(urgentTerms)),
	}
	for _, e := range afinn {
		s.valence[textproc.Stem(e.word)] = e.valence
	}
	for _, n := range negators {
		s.negators[n] = struct{}{}
	}
	for _, u := range urgentTerms {
		s.urgent[u] = struct{}{}
	}
	return s
}

// Score sums stemmed-token valences, divides by the token count and derives
// the label and urgency flag. A negator flips the first scored token within
// the next negationWindow tokens, then expires. The score is not clamped.
func (s *Scorer) Score(tokens []string) Result {
	if len(tokens) == 0 {
		return Result{Label: Neutral}
	}

	sum := 0
	negateLeft := 0
	hasUrgentTerm := false
	for _, tok := range tokens {
		if _, ok := s.urgent[tok]; ok {
			hasUrgentTerm = true
		}
		if _, ok := s.negators[tok]; ok {
			negateLeft = negationWindow
			continue
		}
		negate := negateLeft > 0
		if negateLeft > 0 {
			negateLeft--
		}
		v, ok := s.valence[textproc.Stem(tok)]
		if !ok {
			continue
		}
		if negate {
			v = -v
			negateLeft = 0
		}
		sum += v
	}

	score := float64(sum) / float64(len(tokens))
	res := Result{Score: score, Label: labelFor(score)}
	res.IsUrgent = (res.Label == Negative && score < urgentThreshold) || hasUrgentTerm
	return res
}

func labelFor(score float64) Label {
	switch {
	case score > positiveThreshold:
		return Positive
	case score < negativeThreshold:
		return Negative
	default:
		return Neutral
	}
}
