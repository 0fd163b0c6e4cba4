// Package textproc splits patient messages into normalized word tokens and
// stems them for lexicon and classifier matching.
package textproc

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)

// Tokenize lower-cases text and splits it on word boundaries. Whitespace-only
// input yields an empty, non-nil slice.
func Tokenize(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.Trim(m, "'")
		if m == "" {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// Stem reduces a lower-cased token to its Porter2 stem.
func Stem(token string) string {
	if token == "" {
		return ""
	}
	return english.Stem(token, true)
}

// StemAll returns stems parallel to tokens.
func StemAll(tokens []string) []string {
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = Stem(tok)
	}
	return stems
}

// ContentStems stems tokens and drops stop words; it is the feature set used
// by the intent classifier.
func ContentStems(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if IsStopWord(tok) {
			continue
		}
		out = append(out, Stem(tok))
	}
	return out
}

// IsStopWord reports whether token is a common English function word.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

var stopWords = toSet(
	"a", "about", "after", "again", "all", "am", "an", "and", "any", "are", "as", "at",
	"be", "been", "before", "being", "both", "but", "by", "can", "could", "did", "do",
	"does", "doing", "for", "from", "had", "has", "have", "having", "he", "her", "here",
	"hers", "him", "his", "how", "i", "i'm", "i've", "i'd", "if", "in", "into", "is", "it",
	"it's", "its", "just", "me", "more", "most", "my", "myself", "of", "off", "on", "once",
	"only", "or", "other", "our", "ours", "out", "over", "own", "same", "she", "so", "some",
	"such", "than", "that", "the", "their", "them", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "up", "very", "was", "we", "were", "what", "when",
	"where", "which", "while", "who", "whom", "why", "will", "with", "would", "you", "your",
	"yours", "s", "t",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
