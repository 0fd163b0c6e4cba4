// Package support raises staff escalations for messages that need a human
// right away.
package support

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/careline-triage/internal/notify"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

var escalationTracer = otel.Tracer("careline/escalation")

// ErrEscalationNotFound is returned when an update matches no row.
var ErrEscalationNotFound = errors.New("support: escalation not found or already handled")

// EscalationType represents the reason for an escalation.
type EscalationType string

const (
	EscalationMedicalEmergency EscalationType = "MEDICAL_EMERGENCY"
	EscalationUrgentSymptoms   EscalationType = "URGENT_SYMPTOMS"
)

// EscalationPriority represents the urgency of an escalation.
type EscalationPriority string

const (
	PriorityHigh   EscalationPriority = "HIGH"
	PriorityMedium EscalationPriority = "MEDIUM"
	PriorityLow    EscalationPriority = "LOW"
)

// EscalationStatus represents the lifecycle state of an escalation.
type EscalationStatus string

const (
	StatusPending      EscalationStatus = "PENDING"
	StatusAcknowledged EscalationStatus = "ACKNOWLEDGED"
	StatusResolved     EscalationStatus = "RESOLVED"
)

// Escalation represents a staff escalation record. It never holds message
// text; Description lists matched symptom keywords only.
type Escalation struct {
	ID                uuid.UUID          `json:"id"`
	UserID            string             `json:"userId"`
	TicketID          string             `json:"ticketId,omitempty"`
	MessageID         string             `json:"messageId,omitempty"`
	Type              EscalationType     `json:"type"`
	Priority          EscalationPriority `json:"priority"`
	Status            EscalationStatus   `json:"status"`
	UrgencyLevel      string             `json:"urgencyLevel"`
	Description       string             `json:"description"`
	RecommendedAction string             `json:"recommendedAction"`
	AcknowledgedAt    *time.Time         `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy    string             `json:"acknowledgedBy,omitempty"`
	ResolvedAt        *time.Time         `json:"resolvedAt,omitempty"`
	ResolvedBy        string             `json:"resolvedBy,omitempty"`
	RemindedAt        *time.Time         `json:"remindedAt,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// EmergencyRequest describes a triaged message that needs staff attention.
type EmergencyRequest struct {
	UserID         string
	TicketID       string
	MessageID      string
	UrgencyLevel   string
	Recommendation string
	Symptoms       []string
}

// EscalationService stores escalations and emails the on-call address.
type EscalationService struct {
	db          *sql.DB
	email       notify.EmailSender
	onCallEmail string
	logger      *logging.Logger
	now         func() time.Time
}

// NewEscalationService creates a new escalation service. email may be nil.
func NewEscalationService(db *sql.DB, email notify.EmailSender, onCallEmail string, logger *logging.Logger) *EscalationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EscalationService{
		db:          db,
		email:       email,
		onCallEmail: strings.TrimSpace(onCallEmail),
		logger:      logger,
		now:         time.Now,
	}
}

// Escalate creates an escalation for a triaged message. Emergencies are
// high priority; urgent messages are medium.
func (s *EscalationService) Escalate(ctx context.Context, req EmergencyRequest) (*Escalation, error) {
	ctx, span := escalationTracer.Start(ctx, "escalation.create")
	defer span.End()

	typ, priority := EscalationUrgentSymptoms, PriorityMedium
	if req.UrgencyLevel == "emergency" {
		typ, priority = EscalationMedicalEmergency, PriorityHigh
	}
	span.SetAttributes(
		attribute.String("escalation.type", string(typ)),
		attribute.String("escalation.priority", string(priority)),
		attribute.String("careline.urgency_level", req.UrgencyLevel),
	)

	now := s.now().UTC()
	e := &Escalation{
		ID:                uuid.New(),
		UserID:            req.UserID,
		TicketID:          req.TicketID,
		MessageID:         req.MessageID,
		Type:              typ,
		Priority:          priority,
		Status:            StatusPending,
		UrgencyLevel:      req.UrgencyLevel,
		Description:       describe(req),
		RecommendedAction: req.Recommendation,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store(ctx, e); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("support: store escalation: %w", err)
	}

	if err := s.notifyStaff(ctx, e); err != nil {
		s.logger.Error("failed to notify staff", "error", err, "escalation_id", e.ID)
	}

	s.logger.Info("escalation created",
		"id", e.ID,
		"type", e.Type,
		"priority", e.Priority,
		"user_id", e.UserID,
	)
	return e, nil
}

// Acknowledge marks a pending escalation as acknowledged.
func (s *EscalationService) Acknowledge(ctx context.Context, id uuid.UUID, staffMember string) error {
	now := s.now().UTC()
	query := `
		UPDATE escalations
		SET status = $1, acknowledged_at = $2, acknowledged_by = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	result, err := s.db.ExecContext(ctx, query, StatusAcknowledged, now, staffMember, now, id, StatusPending)
	if err != nil {
		return fmt.Errorf("support: acknowledge escalation: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEscalationNotFound
	}
	s.logger.Info("escalation acknowledged", "id", id, "by", staffMember)
	return nil
}

// Resolve closes an escalation.
func (s *EscalationService) Resolve(ctx context.Context, id uuid.UUID, staffMember string) error {
	now := s.now().UTC()
	query := `
		UPDATE escalations
		SET status = $1, resolved_at = $2, resolved_by = $3, updated_at = $4
		WHERE id = $5 AND status != $6
	`
	result, err := s.db.ExecContext(ctx, query, StatusResolved, now, staffMember, now, id, StatusResolved)
	if err != nil {
		return fmt.Errorf("support: resolve escalation: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEscalationNotFound
	}
	s.logger.Info("escalation resolved", "id", id, "by", staffMember)
	return nil
}

const escalationColumns = `
	id, user_id, ticket_id, message_id, type, priority, status, urgency_level,
	description, recommended_action, acknowledged_at, acknowledged_by,
	resolved_at, resolved_by, reminded_at, created_at, updated_at`

// Pending returns unacknowledged escalations, highest priority first.
func (s *EscalationService) Pending(ctx context.Context) ([]*Escalation, error) {
	query := `SELECT` + escalationColumns + `
		FROM escalations
		WHERE status = $1
		ORDER BY
			CASE priority WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END,
			created_at ASC
	`
	return s.queryEscalations(ctx, query, StatusPending)
}

// RemindOverdue re-notifies on-call staff once for every high priority
// escalation still pending at cutoff. It returns how many reminders went out.
func (s *EscalationService) RemindOverdue(ctx context.Context, cutoff time.Time) (int, error) {
	ctx, span := escalationTracer.Start(ctx, "escalation.remind_overdue")
	defer span.End()

	query := `SELECT` + escalationColumns + `
		FROM escalations
		WHERE status = $1 AND priority = $2 AND reminded_at IS NULL AND created_at < $3
		ORDER BY created_at ASC
	`
	overdue, err := s.queryEscalations(ctx, query, StatusPending, PriorityHigh, cutoff.UTC())
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	sent := 0
	for _, e := range overdue {
		if err := s.sendReminder(ctx, e); err != nil {
			s.logger.Warn("failed to send escalation reminder", "escalation_id", e.ID, "error", err)
			continue
		}
		now := s.now().UTC()
		if _, err := s.db.ExecContext(ctx,
			`UPDATE escalations SET reminded_at = $1, updated_at = $1 WHERE id = $2`, now, e.ID); err != nil {
			return sent, fmt.Errorf("support: mark reminded: %w", err)
		}
		sent++
	}
	span.SetAttributes(attribute.Int("escalation.reminders_sent", sent))
	return sent, nil
}

func (s *EscalationService) queryEscalations(ctx context.Context, query string, args ...any) ([]*Escalation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("support: query escalations: %w", err)
	}
	defer rows.Close()

	var out []*Escalation
	for rows.Next() {
		var e Escalation
		var ticketID, messageID, ackBy, resBy sql.NullString
		var ackAt, resAt, remindedAt sql.NullTime
		if err := rows.Scan(
			&e.ID, &e.UserID, &ticketID, &messageID, &e.Type, &e.Priority, &e.Status, &e.UrgencyLevel,
			&e.Description, &e.RecommendedAction, &ackAt, &ackBy,
			&resAt, &resBy, &remindedAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("support: scan escalation: %w", err)
		}
		e.TicketID = ticketID.String
		e.MessageID = messageID.String
		e.AcknowledgedBy = ackBy.String
		e.ResolvedBy = resBy.String
		e.AcknowledgedAt = timePtr(ackAt)
		e.ResolvedAt = timePtr(resAt)
		e.RemindedAt = timePtr(remindedAt)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *EscalationService) store(ctx context.Context, e *Escalation) error {
	query := `
		INSERT INTO escalations (
			id, user_id, ticket_id, message_id, type, priority, status, urgency_level,
			description, recommended_action, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.UserID, nullString(e.TicketID), nullString(e.MessageID), e.Type, e.Priority, e.Status,
		e.UrgencyLevel, e.Description, e.RecommendedAction, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (s *EscalationService) notifyStaff(ctx context.Context, e *Escalation) error {
	if s.email == nil || s.onCallEmail == "" {
		return nil
	}
	subject, body := formatEmail(e)
	return s.email.Send(ctx, notify.EmailMessage{
		To:      s.onCallEmail,
		ToName:  "On-call clinician",
		Subject: subject,
		Body:    body,
	})
}

func (s *EscalationService) sendReminder(ctx context.Context, e *Escalation) error {
	if s.email == nil || s.onCallEmail == "" {
		return errors.New("no on-call address configured")
	}
	subject, body := formatEmail(e)
	return s.email.Send(ctx, notify.EmailMessage{
		To:      s.onCallEmail,
		ToName:  "On-call clinician",
		Subject: "[REMINDER] " + subject,
		Body:    fmt.Sprintf("This escalation has not been acknowledged since %s.\n\n%s", e.CreatedAt.Format(time.RFC1123), body),
	})
}

func describe(req EmergencyRequest) string {
	if len(req.Symptoms) == 0 {
		return fmt.Sprintf("Message triaged as %s.", req.UrgencyLevel)
	}
	return fmt.Sprintf("Message triaged as %s. Matched: %s.", req.UrgencyLevel, strings.Join(req.Symptoms, ", "))
}

func formatEmail(e *Escalation) (subject, body string) {
	subject = fmt.Sprintf("[%s Priority] %s escalation", e.Priority, e.Type)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Escalation ID: %s\n\n", e.ID))
	sb.WriteString(fmt.Sprintf("Type: %s\n", e.Type))
	sb.WriteString(fmt.Sprintf("Priority: %s\n", e.Priority))
	sb.WriteString(fmt.Sprintf("Created: %s\n", e.CreatedAt.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("User ID: %s\n", e.UserID))
	if e.TicketID != "" {
		sb.WriteString(fmt.Sprintf("Ticket ID: %s\n", e.TicketID))
	}
	sb.WriteString("\n--- Description ---\n")
	sb.WriteString(e.Description)
	sb.WriteString("\n\n--- Recommended Action ---\n")
	sb.WriteString(e.RecommendedAction)
	sb.WriteString("\n")
	return subject, sb.String()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
