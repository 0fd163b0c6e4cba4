// Package compliance detects and redacts PHI and keeps the audit trail for
// regulated message handling.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuditEventType represents the type of compliance event.
type AuditEventType string

const (
	// EventPHIDetected is logged when a message contains PHI.
	EventPHIDetected AuditEventType = "compliance.phi_detected"
	// EventPHIRedacted is logged when a stored or echoed copy was redacted.
	EventPHIRedacted AuditEventType = "compliance.phi_redacted"
	// EventDisclaimerSent is logged when a disclaimer is appended to a reply.
	EventDisclaimerSent AuditEventType = "compliance.disclaimer_sent"
	// EventEmergencyTriaged is logged for every emergency-level triage.
	EventEmergencyTriaged AuditEventType = "clinical.emergency_triaged"
)

// AuditEvent is an immutable audit record. It never carries message text.
type AuditEvent struct {
	ID         string          `json:"id"`
	EventType  AuditEventType  `json:"event_type"`
	UserID     string          `json:"user_id,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	Redacted   bool            `json:"redacted"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditDetails contains event-specific details.
type AuditDetails struct {
	// PHI events
	Counts map[PHICategory]int `json:"counts,omitempty"`

	// Disclaimer events
	DisclaimerLevel string `json:"disclaimer_level,omitempty"`

	// Triage events
	TriageLevel    string `json:"triage_level,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// AuditLogger is the write side used by the pipeline.
type AuditLogger interface {
	LogPHIDetected(ctx context.Context, userID string, finding PHIFinding, redacted bool) error
	LogEmergency(ctx context.Context, userID, level, recommendation string) error
}

// AuditService persists audit events to Postgres.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// LogEvent records an audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Details == nil {
		event.Details = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO phi_audit_events (
			id, event_type, user_id, categories, redacted, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		nullString(event.UserID),
		pq.Array(event.Categories),
		event.Redacted,
		[]byte(event.Details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}
	return nil
}

// LogPHIDetected records the categories and counts of a PHI finding.
func (s *AuditService) LogPHIDetected(ctx context.Context, userID string, finding PHIFinding, redacted bool) error {
	detailsJSON, _ := json.Marshal(AuditDetails{Counts: finding.DetectedPHI})
	eventType := EventPHIDetected
	if redacted {
		eventType = EventPHIRedacted
	}
	return s.LogEvent(ctx, AuditEvent{
		EventType:  eventType,
		UserID:     userID,
		Categories: finding.Categories(),
		Redacted:   redacted,
		Details:    detailsJSON,
	})
}

// LogEmergency records an emergency triage outcome.
func (s *AuditService) LogEmergency(ctx context.Context, userID, level, recommendation string) error {
	detailsJSON, _ := json.Marshal(AuditDetails{TriageLevel: level, Recommendation: recommendation})
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventEmergencyTriaged,
		UserID:    userID,
		Details:   detailsJSON,
	})
}

// LogDisclaimerSent records that a disclaimer was appended.
func (s *AuditService) LogDisclaimerSent(ctx context.Context, userID, level string) error {
	detailsJSON, _ := json.Marshal(AuditDetails{DisclaimerLevel: level})
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventDisclaimerSent,
		UserID:    userID,
		Details:   detailsJSON,
	})
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	UserID    string
	EventType AuditEventType
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// QueryEvents retrieves audit events newest first.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	query := `
		SELECT id, event_type, user_id, categories, redacted, details, created_at
		FROM phi_audit_events
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var userID sql.NullString
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.EventType, &userID, pq.Array(&e.Categories),
			&e.Redacted, &details, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.UserID = userID.String
		e.Details = details
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to iterate audit events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
