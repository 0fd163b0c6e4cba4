package language

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type pair struct {
	from, to Code
}

type dictionary struct {
	phrases []phraseRule
	words   map[string]string
}

type phraseRule struct {
	re *regexp.Regexp
	to string
}

func newDictionary(phrases [][2]string, words map[string]string) dictionary {
	d := dictionary{words: words}
	for _, p := range phrases {
		d.phrases = append(d.phrases, phraseRule{
			re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p[0]) + `\b`),
			to: p[1],
		})
	}
	return d
}

var dictionaries = map[pair]dictionary{
	{English, Spanish}: newDictionary(
		[][2]string{
			{"thank you", "gracias"},
			{"as soon as possible", "lo antes posible"},
			{"emergency room", "sala de emergencias"},
			{"primary care", "atención primaria"},
			{"urgent care", "atención urgente"},
			{"care team", "equipo médico"},
		},
		map[string]string{
			"hello":         "hola",
			"appointment":   "cita",
			"appointments":  "citas",
			"doctor":        "médico",
			"provider":      "proveedor",
			"please":        "por favor",
			"pain":          "dolor",
			"medication":    "medicamento",
			"medications":   "medicamentos",
			"prescription":  "receta",
			"prescriptions": "recetas",
			"emergency":     "emergencia",
			"urgent":        "urgente",
			"today":         "hoy",
			"tomorrow":      "mañana",
			"help":          "ayuda",
			"schedule":      "programar",
			"symptoms":      "síntomas",
			"allergies":     "alergias",
			"billing":       "facturación",
			"insurance":     "seguro",
			"nurse":         "enfermera",
			"immediately":   "inmediatamente",
			"call":          "llame",
			"your":          "su",
			"you":           "usted",
			"and":           "y",
			"with":          "con",
			"for":           "para",
			"we":            "nosotros",
			"soon":          "pronto",
			"health":        "salud",
		},
	),
}

var wordPattern = regexp.MustCompile(`[\p{L}']+`)

// Localize substitutes whole words and phrases from a small term table.
// Unsupported language pairs return text unchanged.
func Localize(text string, target Code) string {
	if target == "" || target == English {
		return text
	}
	dict, ok := dictionaries[pair{English, target}]
	if !ok {
		return text
	}
	out := text
	for _, p := range dict.phrases {
		out = p.re.ReplaceAllStringFunc(out, func(m string) string {
			return matchCase(m, p.to)
		})
	}
	return wordPattern.ReplaceAllStringFunc(out, func(w string) string {
		repl, ok := dict.words[strings.ToLower(w)]
		if !ok {
			return w
		}
		return matchCase(w, repl)
	})
}

// Supported reports whether Localize can translate into target.
func Supported(target Code) bool {
	if target == English {
		return true
	}
	_, ok := dictionaries[pair{English, target}]
	return ok
}

// matchCase carries the casing of original over to repl: all caps stays
// all caps (so "[EMERGENCY]" keeps its shape), a leading capital is kept.
func matchCase(original, repl string) string {
	r, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(r) {
		return repl
	}
	if isAllCaps(original) {
		return strings.ToUpper(repl)
	}
	first, size := utf8.DecodeRuneInString(repl)
	return string(unicode.ToUpper(first)) + repl[size:]
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters > 1
}
