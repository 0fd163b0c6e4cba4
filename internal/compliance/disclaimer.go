package compliance

import (
	"context"
	"fmt"
	"strings"
)

// DisclaimerLevel represents the verbosity of the disclaimer.
type DisclaimerLevel string

const (
	DisclaimerShort  DisclaimerLevel = "short"
	DisclaimerMedium DisclaimerLevel = "medium"
	DisclaimerFull   DisclaimerLevel = "full"
)

const (
	disclaimerShortText = "Automated triage. Not medical advice."

	disclaimerMediumText = "This reply was generated automatically and is not a diagnosis. For medical advice, please contact your care team."

	disclaimerFullText = "This reply was generated automatically from your message and is not a diagnosis or a substitute for professional medical advice. If you believe you are experiencing a medical emergency, call 911 or go to the nearest emergency room."
)

// ParseDisclaimerLevel maps a config string onto a level, defaulting to medium.
func ParseDisclaimerLevel(s string) DisclaimerLevel {
	switch DisclaimerLevel(strings.ToLower(strings.TrimSpace(s))) {
	case DisclaimerShort:
		return DisclaimerShort
	case DisclaimerFull:
		return DisclaimerFull
	default:
		return DisclaimerMedium
	}
}

type disclaimerAuditor interface {
	LogDisclaimerSent(ctx context.Context, userID, level string) error
}

// DisclaimerService appends the configured disclaimer to replies.
type DisclaimerService struct {
	audit disclaimerAuditor
	level DisclaimerLevel
}

// NewDisclaimerService creates a disclaimer service. audit may be nil.
func NewDisclaimerService(audit *AuditService, level DisclaimerLevel) *DisclaimerService {
	s := &DisclaimerService{level: level}
	if audit != nil {
		s.audit = audit
	}
	return s
}

// Text returns the disclaimer for the configured level.
func (s *DisclaimerService) Text() string {
	switch s.level {
	case DisclaimerShort:
		return disclaimerShortText
	case DisclaimerFull:
		return disclaimerFullText
	default:
		return disclaimerMediumText
	}
}

// Append adds the disclaimer to message unless it is already present.
func (s *DisclaimerService) Append(ctx context.Context, userID, message string) string {
	if s == nil {
		return message
	}
	disclaimer := s.Text()
	if strings.Contains(message, disclaimer) {
		return message
	}
	result := fmt.Sprintf("%s\n\n%s", strings.TrimSpace(message), disclaimer)
	if s.audit != nil {
		_ = s.audit.LogDisclaimerSent(ctx, userID, string(s.level))
	}
	return result
}
