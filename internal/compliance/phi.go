package compliance

import (
	"fmt"
	"regexp"
	"strings"
)

// PHICategory names a class of protected health information.
type PHICategory string

const (
	PHINames          PHICategory = "names"
	PHIPhoneNumbers   PHICategory = "phoneNumbers"
	PHIEmails         PHICategory = "emails"
	PHISSN            PHICategory = "ssn"
	PHIMedicalRecords PHICategory = "medicalRecordNumbers"
	PHIAddresses      PHICategory = "addresses"
	PHIDates          PHICategory = "dates"
)

// PHIFinding is the result of scanning a message for PHI. Counts are raw
// pattern match counts, not distinct values.
type PHIFinding struct {
	ContainsPHI     bool                `json:"containsPHI"`
	DetectedPHI     map[PHICategory]int `json:"detectedPHI"`
	Recommendations []string            `json:"recommendations"`
	SafeToStore     bool                `json:"safeToStore"`
}

// Categories returns the detected categories in detector order.
func (f PHIFinding) Categories() []string {
	var out []string
	for _, p := range phiPatterns {
		if f.DetectedPHI[p.category] > 0 {
			out = append(out, string(p.category))
		}
	}
	return out
}

type phiPattern struct {
	category    PHICategory
	re          *regexp.Regexp
	placeholder string
	// redactByDefault is false for names and dates: they are reported but
	// only masked when PHIOptions.RedactNamesDates is set.
	redactByDefault bool
	advice          string
}

// Order matters for redaction: emails and SSNs are masked before the looser
// phone pattern runs.
var phiPatterns = []phiPattern{
	{
		category:        PHIEmails,
		re:              regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`),
		placeholder:     "[EMAIL]",
		redactByDefault: true,
		advice:          "Email addresses detected; contact details belong in the patient profile, not the message body.",
	},
	{
		category:        PHISSN,
		re:              regexp.MustCompile(`\b\d{3}[- ]?\d{2}[- ]?\d{4}\b`),
		placeholder:     "[SSN]",
		redactByDefault: true,
		advice:          "Social Security numbers detected; never store them in ticket text.",
	},
	{
		category:        PHIMedicalRecords,
		re:              regexp.MustCompile(`(?i)\b(?:MRN|medical\s+record(?:\s+(?:number|no\.?))?)\s*(?:#|no\.?)?\s*:?\s*[A-Z]{0,3}\d{4,10}\b`),
		placeholder:     "[MEDICAL RECORD NUMBER]",
		redactByDefault: true,
		advice:          "Medical record numbers detected; reference the chart through the EHR link instead.",
	},
	{
		category:        PHIPhoneNumbers,
		re:              regexp.MustCompile(`(?:\+?1[-.\s]?)?(?:\(\d{3}\)|\b\d{3})[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		placeholder:     "[PHONE NUMBER]",
		redactByDefault: true,
		advice:          "Phone numbers detected; verify identity before using them for callbacks.",
	},
	{
		category:        PHIAddresses,
		re:              regexp.MustCompile(`\b\d{1,5}\s+(?:[A-Z][A-Za-z0-9.']*\s+){1,3}(?i:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|place|pl|terrace|parkway|pkwy)\b\.?`),
		placeholder:     "[ADDRESS]",
		redactByDefault: true,
		advice:          "Street addresses detected; store them only in the demographics record.",
	},
	{
		category:    PHINames,
		re:          regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2}\b`),
		placeholder: "[NAME]",
		advice:      "Possible patient names detected; confirm before sharing outside the care team.",
	},
	{
		category:    PHIDates,
		re:          regexp.MustCompile(`(?i)\b(?:\d{1,2}/\d{1,2}/\d{2,4}|(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`),
		placeholder: "[DATE]",
		advice:      "Dates detected; birth dates and service dates are PHI when tied to a patient.",
	},
}

// PHIPattern exposes the compiled detector for a category so other
// extractors can report the same matches.
func PHIPattern(category PHICategory) *regexp.Regexp {
	for _, p := range phiPatterns {
		if p.category == category {
			return p.re
		}
	}
	return nil
}

// PHIOptions tunes redaction.
type PHIOptions struct {
	// RedactNamesDates extends redaction to the name and date detectors,
	// which are otherwise reported but left in place.
	RedactNamesDates bool
}

// PHIDetector checks and redacts PHI in free text. The zero value is not
// usable; construct with NewPHIDetector.
type PHIDetector struct {
	opts PHIOptions
}

// NewPHIDetector returns a detector with the given options.
func NewPHIDetector(opts PHIOptions) *PHIDetector {
	return &PHIDetector{opts: opts}
}

// Check runs every PHI detector over text.
func (d *PHIDetector) Check(text string) PHIFinding {
	finding := PHIFinding{
		DetectedPHI:     make(map[PHICategory]int),
		Recommendations: []string{},
	}
	for _, p := range phiPatterns {
		n := len(p.re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		finding.ContainsPHI = true
		finding.DetectedPHI[p.category] = n
		finding.Recommendations = append(finding.Recommendations, p.advice)
	}
	if finding.ContainsPHI {
		finding.Recommendations = append(finding.Recommendations,
			fmt.Sprintf("Store only the redacted copy of this message (%d PHI categories found).", len(finding.DetectedPHI)))
	}
	finding.SafeToStore = !finding.ContainsPHI
	return finding
}

// Redact replaces PHI matches with placeholder tokens. Redact is idempotent.
func (d *PHIDetector) Redact(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	// A match can free a word boundary for an earlier pattern (an SSN
	// followed by a "1-" phone prefix), so repeat until nothing changes.
	// Placeholders never re-match, which bounds the loop.
	out := text
	for {
		next := d.redactOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func (d *PHIDetector) redactOnce(text string) string {
	for _, p := range phiPatterns {
		if !p.redactByDefault && (d == nil || !d.opts.RedactNamesDates) {
			continue
		}
		text = p.re.ReplaceAllLiteralString(text, p.placeholder)
	}
	return text
}

var defaultDetector = NewPHIDetector(PHIOptions{})

// CheckPHI scans text with the default detector.
func CheckPHI(text string) PHIFinding {
	return defaultDetector.Check(text)
}

// RedactPHI masks phone, email, SSN, MRN and address matches.
func RedactPHI(text string) string {
	return defaultDetector.Redact(text)
}
