package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/careline-triage/internal/language"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Handler exposes the engine over HTTP.
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

type textRequest struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

func (t textRequest) value() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Message
}

type voiceBody struct {
	Request
	Audio []byte `json:"audio"`
}

// Analyze runs the full pipeline on one message.
// POST /v1/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !decode(w, r, &req) {
		return
	}
	res, err := h.engine.Analyze(r.Context(), req)
	if err != nil {
		h.fail(w, req.UserID, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AnalyzeVoice transcribes base64 audio and analyzes the transcript.
// POST /v1/analyze/voice
func (h *Handler) AnalyzeVoice(w http.ResponseWriter, r *http.Request) {
	var body voiceBody
	if !decode(w, r, &body) {
		return
	}
	res, err := h.engine.AnalyzeVoice(r.Context(), VoiceRequest{Request: body.Request, Audio: body.Audio})
	if err != nil {
		h.fail(w, body.UserID, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckPHI reports PHI findings for a text.
// POST /v1/phi/check
func (h *Handler) CheckPHI(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	if !decode(w, r, &body) {
		return
	}
	finding, err := h.engine.CheckPHI(body.value())
	if err != nil {
		h.fail(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, finding)
}

// RedactPHI returns the redacted text.
// POST /v1/phi/redact
func (h *Handler) RedactPHI(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	if !decode(w, r, &body) {
		return
	}
	redacted, err := h.engine.RedactPHI(body.value())
	if err != nil {
		h.fail(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redacted": redacted})
}

// Triage returns the urgency level without composing a reply.
// POST /v1/triage
func (h *Handler) Triage(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := h.engine.Triage(body.value())
	if err != nil {
		h.fail(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DetectLanguage guesses the language of a text and reports whether
// replies in it are localized.
// POST /v1/language/detect
func (h *Handler) DetectLanguage(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	if !decode(w, r, &body) {
		return
	}
	code := language.Detect(body.value())
	writeJSON(w, http.StatusOK, map[string]any{
		"language":  code,
		"localized": language.Supported(code),
	})
}

// GetContext returns the user's recent analyses.
// GET /v1/staff/context/{userID}
func (h *Handler) GetContext(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		jsonError(w, "user id is required", http.StatusBadRequest)
		return
	}
	snapshot, ok, err := h.engine.Contexts().Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load context", "user_id", userID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		jsonError(w, "context not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) fail(w http.ResponseWriter, userID string, err error) {
	status := StatusCode(err)
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConfigurationDisabled):
		jsonError(w, err.Error(), status)
	case errors.Is(err, ErrUpstreamUnavailable):
		h.logger.Warn("analysis unavailable", "user_id", userID, "error", err)
		jsonError(w, ErrUpstreamUnavailable.Error(), status)
	default:
		h.logger.Error("analysis failed", "user_id", userID, "error", err)
		jsonError(w, "internal error", status)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
