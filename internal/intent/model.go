package intent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jbrukh/bayesian"

	"github.com/wolfman30/careline-triage/internal/textproc"
)

// ErrClassifierUnready is returned when a model is used before training.
var ErrClassifierUnready = errors.New("intent: classifier not trained")

// Model is a trained intent classifier. It is read-only after Train returns
// and safe for concurrent use.
type Model struct {
	classifier *bayesian.Classifier
	classes    []bayesian.Class
	examples   int
}

// Train builds a model from labeled examples. Every intent in All is a class
// so that ordering, and therefore tie-breaking, is fixed.
func Train(examples []Example) (*Model, error) {
	if len(examples) == 0 {
		return nil, errors.New("intent: training corpus is empty")
	}

	classes := make([]bayesian.Class, len(All))
	for i, in := range All {
		classes[i] = bayesian.Class(in)
	}
	classifier := bayesian.NewClassifier(classes...)

	seen := make(map[Intent]int, len(All))
	for i, ex := range examples {
		if !ex.Category.Valid() {
			return nil, fmt.Errorf("intent: example %d has unknown category %q", i, ex.Category)
		}
		features := textproc.ContentStems(textproc.Tokenize(ex.Text))
		if len(features) == 0 {
			return nil, fmt.Errorf("intent: example %d has no content words", i)
		}
		classifier.Learn(features, bayesian.Class(ex.Category))
		seen[ex.Category]++
	}
	for _, in := range All {
		if seen[in] == 0 {
			return nil, fmt.Errorf("intent: no training examples for %q", in)
		}
	}

	return &Model{
		classifier: classifier,
		classes:    classes,
		examples:   len(examples),
	}, nil
}

// MustTrainDefault trains on the built-in corpus and panics on failure; the
// corpus is static so a failure is a programming error.
func MustTrainDefault() *Model {
	m, err := Train(Corpus())
	if err != nil {
		panic(err)
	}
	return m
}

// Ready reports whether the model can classify.
func (m *Model) Ready() bool {
	return m != nil && m.classifier != nil
}

// Examples is the number of documents the model was trained on.
func (m *Model) Examples() int {
	if m == nil {
		return 0
	}
	return m.examples
}

// Classify returns the most likely intent for text. Messages without content
// words classify as General.
func (m *Model) Classify(text string) (Intent, error) {
	if !m.Ready() {
		return "", ErrClassifierUnready
	}
	return m.ClassifyTokens(textproc.Tokenize(text))
}

// ClassifyTokens classifies already tokenized text.
func (m *Model) ClassifyTokens(tokens []string) (Intent, error) {
	if !m.Ready() {
		return "", ErrClassifierUnready
	}
	features := textproc.ContentStems(tokens)
	if len(features) == 0 {
		return General, nil
	}
	_, best, _ := m.classifier.LogScores(features)
	return Intent(m.classes[best]), nil
}

// Scores returns the per-intent log likelihoods, for debugging output.
func (m *Model) Scores(text string) (map[Intent]float64, error) {
	if !m.Ready() {
		return nil, ErrClassifierUnready
	}
	features := textproc.ContentStems(textproc.Tokenize(strings.TrimSpace(text)))
	scores, _, _ := m.classifier.LogScores(features)
	out := make(map[Intent]float64, len(scores))
	for i, s := range scores {
		out[Intent(m.classes[i])] = s
	}
	return out, nil
}
