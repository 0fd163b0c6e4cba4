package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/careline-triage/pkg/logging"
)

// Handler exposes feedback over HTTP.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Submit records feedback for a reply.
// POST /v1/feedback
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var rec Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&rec); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.store.Save(r.Context(), rec); err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to save feedback", "user_id", rec.UserID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "recorded"})
}

// Summary returns the aggregate helpfulness.
// GET /v1/feedback/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to summarize feedback", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
