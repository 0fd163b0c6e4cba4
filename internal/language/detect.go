// Package language guesses the language of a message and localizes replies.
package language

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/wolfman30/careline-triage/internal/textproc"
)

// Code is a two-letter ISO 639-1 language code.
type Code string

const (
	English Code = "en"
	Spanish Code = "es"
	French  Code = "fr"
	Chinese Code = "zh"
	Arabic  Code = "ar"
)

// Default is returned when nothing else matches.
const Default = English

type matcher struct {
	re *regexp.Regexp
	// raw matchers run over the message; the rest test each token.
	raw bool
}

type profile struct {
	code     Code
	patterns []matcher
}

func words(list string) matcher {
	return matcher{re: regexp.MustCompile(`^(?:` + list + `)$`)}
}

// Checked in order; the first profile with at least half of its patterns
// matching wins.
var profiles = []profile{
	{English, []matcher{
		words(`the|a|an`),
		words(`is|are|was|were|am|i'm`),
		words(`i|you|my|your|me`),
		words(`and|or|but|to|of|in|for|with`),
		words(`hello|hi|hey|thanks|thank|please`),
		words(`have|has|need|want|can`),
	}},
	{Spanish, []matcher{
		words(`el|la|los|las|un|una`),
		words(`es|está|estoy|son|tengo|tiene`),
		words(`yo|mi|tu|usted|me`),
		words(`y|o|pero|de|en|con|para|por|que`),
		words(`hola|gracias|favor|buenos|buenas`),
		words(`necesito|quiero|puedo|dolor`),
	}},
	{French, []matcher{
		words(`le|la|les|un|une|des`),
		words(`est|suis|sont|ai|avez|j'ai`),
		words(`je|moi|mon|ma|vous|votre`),
		words(`et|ou|mais|du|pour|avec|dans`),
		words(`bonjour|merci|salut|s'il`),
		words(`besoin|veux|peux|douleur|mal`),
	}},
	{Chinese, []matcher{{re: regexp.MustCompile(`\p{Han}`), raw: true}}},
	{Arabic, []matcher{{re: regexp.MustCompile(`\p{Arabic}`), raw: true}}},
}

// Detect returns the first language whose pattern hit count reaches half
// its pattern count. Empty or unrecognized text is English.
func Detect(text string) Code {
	if strings.TrimSpace(text) == "" {
		return Default
	}
	tokens := textproc.Tokenize(text)
	for _, p := range profiles {
		hits := 0
		for _, m := range p.patterns {
			if m.raw {
				if m.re.MatchString(text) {
					hits++
				}
				continue
			}
			for _, tok := range tokens {
				if m.re.MatchString(tok) {
					hits++
					break
				}
			}
		}
		if hits*2 >= len(p.patterns) && hits > 0 {
			return p.code
		}
	}
	return Default
}

// Normalize reduces a BCP 47 tag such as "es-MX" to its base language code.
// Empty or malformed tags yield English.
func Normalize(tag string) Code {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Default
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Default
	}
	base, _ := t.Base()
	return Code(base.String())
}
