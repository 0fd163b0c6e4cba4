// Package entities pulls medical and identifying substrings out of patient
// messages with a table of case-insensitive patterns.
package entities

import (
	"regexp"

	"github.com/wolfman30/careline-triage/internal/compliance"
)

// Category names a kind of extracted entity.
type Category string

const (
	Dates             Category = "dates"
	Medications       Category = "medications"
	Symptoms          Category = "symptoms"
	MedicalConditions Category = "medicalConditions"
	BodyParts         Category = "bodyParts"
	Names             Category = "names"
	PhoneNumbers      Category = "phoneNumbers"
	Emails            Category = "emails"
)

// Categories lists every category a Bag carries.
var Categories = []Category{
	Dates, Medications, Symptoms, MedicalConditions, BodyParts, Names, PhoneNumbers, Emails,
}

// Bag maps each category to its matches in order of appearance. Duplicates
// are kept.
type Bag map[Category][]string

// NewBag returns a bag with an empty slice for every category.
func NewBag() Bag {
	b := make(Bag, len(Categories))
	for _, c := range Categories {
		b[c] = []string{}
	}
	return b
}

// Has reports whether category has at least one match.
func (b Bag) Has(c Category) bool {
	return len(b[c]) > 0
}

type scope int

const (
	// tokenScope patterns are anchored and tested against each token.
	tokenScope scope = iota
	// textScope patterns run over the raw message.
	textScope
)

type rule struct {
	category Category
	scope    scope
	re       *regexp.Regexp
}

var defaultRules = []rule{
	{
		category: Dates,
		scope:    textScope,
		re: regexp.MustCompile(`(?i)\b(?:\d{1,2}/\d{1,2}(?:/\d{2,4})?|` +
			`(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?|` +
			`today|tomorrow|yesterday|tonight|` +
			`(?:next|last|this)\s+(?:week|month|year|monday|tuesday|wednesday|thursday|friday|saturday|sunday)|` +
			`monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	},
	{
		category: Medications,
		scope:    tokenScope,
		re: regexp.MustCompile(`(?i)^(?:aspirin|ibuprofen|acetaminophen|tylenol|advil|motrin|aleve|naproxen|` +
			`amoxicillin|penicillin|azithromycin|lisinopril|metformin|insulin|atorvastatin|lipitor|` +
			`levothyroxine|synthroid|amlodipine|metoprolol|omeprazole|prednisone|albuterol|gabapentin|` +
			`sertraline|zoloft|fluoxetine|prozac|alprazolam|xanax|warfarin|hydrocodone|oxycodone|` +
			`enalapril|ramipril|antibiotics?|antihistamines?|\w+cillin|\w+mycin|\w+statin|\w+olol|\w+prazole)$`),
	},
	{
		category: Symptoms,
		scope:    tokenScope,
		re: regexp.MustCompile(`(?i)^(?:pain\w*|\w*aches?|aching|hurt\w*|sore\w*|fever\w*|cough\w*|nause\w*|vomit\w*|` +
			`dizz\w*|fatigue\w*|tired|exhausted|rash\w*|swell\w*|swollen|itch\w*|bleed\w*|breath\w*|wheez\w*|` +
			`shortness|numb\w*|tingl\w*|cramp\w*|diarrh\w*|constipat\w*|insomnia|chills?|congest\w*|` +
			`sneez\w*|faint\w*|palpitations?|migraines?|bruis\w*|burning|stiff\w*)$`),
	},
	{
		category: MedicalConditions,
		scope:    tokenScope,
		re: regexp.MustCompile(`(?i)^(?:diabet\w*|hypertension|asthma\w*|arthritis|cancer|copd|depress\w*|anxiety|` +
			`pneumonia|bronchitis|flu|influenza|covid\w*|infections?|allerg\w*|eczema|psoriasis|obes\w*|` +
			`anemi\w*|thyroid\w*|hypothyroid\w*|epilep\w*|alzheimer\w*|dementia|osteoporosis|strep|` +
			`sinusitis|ulcers?|gerd|reflux|hepatitis|cholesterol)$`),
	},
	{
		category: BodyParts,
		scope:    tokenScope,
		re: regexp.MustCompile(`(?i)^(?:head|neck|chest|back|arms?|legs?|knees?|ankles?|feet|foot|hands?|wrists?|` +
			`elbows?|shoulders?|hips?|stomach|abdomen|belly|throat|ears?|eyes?|nose|mouth|teeth|tooth|` +
			`skin|heart|lungs?|liver|kidneys?|bladder|spine|joints?|muscles?|toes?|fingers?|jaw|brain)$`),
	},
	{category: Names, scope: textScope, re: compliance.PHIPattern(compliance.PHINames)},
	{category: PhoneNumbers, scope: textScope, re: compliance.PHIPattern(compliance.PHIPhoneNumbers)},
	{category: Emails, scope: textScope, re: compliance.PHIPattern(compliance.PHIEmails)},
}

// Extractor applies the pattern table. It holds no mutable state and is
// safe for concurrent use.
type Extractor struct {
	rules []rule
}

// NewExtractor returns an extractor over the built-in pattern table.
func NewExtractor() *Extractor {
	return &Extractor{rules: defaultRules}
}

// Extract runs token-scoped rules over tokens and text-scoped rules over
// raw. Every category is present in the result.
func (e *Extractor) Extract(tokens []string, raw string) Bag {
	bag := NewBag()
	for _, r := range e.rules {
		switch r.scope {
		case tokenScope:
			for _, tok := range tokens {
				if r.re.MatchString(tok) {
					bag[r.category] = append(bag[r.category], tok)
				}
			}
		case textScope:
			bag[r.category] = append(bag[r.category], r.re.FindAllString(raw, -1)...)
		}
	}
	return bag
}
