package compliance

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/careline-triage/pkg/logging"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type auditQuerier interface {
	QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error)
}

// AuditHandler serves the audit trail to staff.
type AuditHandler struct {
	audit  auditQuerier
	logger *logging.Logger
}

func NewAuditHandler(audit *AuditService, logger *logging.Logger) *AuditHandler {
	return newAuditHandler(audit, logger)
}

func newAuditHandler(audit auditQuerier, logger *logging.Logger) *AuditHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuditHandler{audit: audit, logger: logger}
}

// List returns audit events, newest first.
// GET /v1/staff/audit?user_id=&event_type=&since=&until=&limit=
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := AuditFilter{
		UserID:    strings.TrimSpace(q.Get("user_id")),
		EventType: AuditEventType(strings.TrimSpace(q.Get("event_type"))),
		Limit:     defaultAuditLimit,
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		filter.Limit = min(n, maxAuditLimit)
	}
	for param, dst := range map[string]*time.Time{"since": &filter.StartTime, "until": &filter.EndTime} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSONError(w, param+" must be RFC3339", http.StatusBadRequest)
			return
		}
		*dst = t
	}

	events, err := h.audit.QueryEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query audit events", "error", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []AuditEvent{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"events": events})
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
