package support

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/wolfman30/careline-triage/internal/http/middleware"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

type escalationQueue interface {
	Pending(ctx context.Context) ([]*Escalation, error)
	Acknowledge(ctx context.Context, id uuid.UUID, staffMember string) error
	Resolve(ctx context.Context, id uuid.UUID, staffMember string) error
}

// Handler exposes the escalation queue to authenticated staff.
type Handler struct {
	queue  escalationQueue
	logger *logging.Logger
}

func NewHandler(service *EscalationService, logger *logging.Logger) *Handler {
	return newHandler(service, logger)
}

func newHandler(queue escalationQueue, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{queue: queue, logger: logger}
}

// ListPending returns escalations awaiting acknowledgement.
// GET /v1/staff/escalations
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.queue.Pending(r.Context())
	if err != nil {
		h.logger.Error("failed to list escalations", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if pending == nil {
		pending = []*Escalation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"escalations": pending})
}

// Acknowledge marks an escalation as seen by the calling staff member.
// POST /v1/staff/escalations/{id}/acknowledge
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "acknowledged", h.queue.Acknowledge)
}

// Resolve closes an escalation.
// POST /v1/staff/escalations/{id}/resolve
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "resolved", h.queue.Resolve)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, status string, apply func(context.Context, uuid.UUID, string) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid escalation id", http.StatusBadRequest)
		return
	}
	staff, ok := httpmiddleware.StaffMember(r.Context())
	if !ok {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := apply(r.Context(), id, staff); err != nil {
		if errors.Is(err, ErrEscalationNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update escalation", "escalation_id", id, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": status})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
