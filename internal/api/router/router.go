package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/careline-triage/internal/compliance"
	"github.com/wolfman30/careline-triage/internal/feedback"
	httpmiddleware "github.com/wolfman30/careline-triage/internal/http/middleware"
	"github.com/wolfman30/careline-triage/internal/pipeline"
	"github.com/wolfman30/careline-triage/internal/support"
	"github.com/wolfman30/careline-triage/internal/webchat"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	PipelineHandler    *pipeline.Handler
	FeedbackHandler    *feedback.Handler
	ChatHandler        *webchat.Handler
	EscalationHandler  *support.Handler
	AuditHandler       *compliance.AuditHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
	StaffAuthSecret    string

	// Readiness checks, keyed by dependency name (optional)
	ReadinessChecks map[string]Pinger
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", health)
	r.Get("/ready", ready(cfg.ReadinessChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		if cfg.RateLimiter != nil {
			v1.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}

		if h := cfg.PipelineHandler; h != nil {
			v1.Post("/analyze", h.Analyze)
			v1.Post("/analyze/voice", h.AnalyzeVoice)
			v1.Post("/phi/check", h.CheckPHI)
			v1.Post("/phi/redact", h.RedactPHI)
			v1.Post("/triage", h.Triage)
			v1.Post("/language/detect", h.DetectLanguage)
		}

		if h := cfg.FeedbackHandler; h != nil {
			v1.Post("/feedback", h.Submit)
			v1.Get("/feedback/summary", h.Summary)
		}

		if h := cfg.ChatHandler; h != nil {
			v1.Get("/chat/ws", h.HandleWebSocket)
			v1.Post("/chat/messages", h.HandleMessage)
		}

		// Staff routes require a signed staff token. Stored message text is
		// only readable here.
		if cfg.StaffAuthSecret != "" {
			v1.Route("/staff", func(staff chi.Router) {
				staff.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))
				if h := cfg.PipelineHandler; h != nil {
					staff.Get("/context/{userID}", h.GetContext)
				}
				if h := cfg.ChatHandler; h != nil {
					staff.Get("/chat/history", h.HandleHistory)
				}
				if h := cfg.EscalationHandler; h != nil {
					staff.Get("/escalations", h.ListPending)
					staff.Post("/escalations/{id}/acknowledge", h.Acknowledge)
					staff.Post("/escalations/{id}/resolve", h.Resolve)
				}
				if h := cfg.AuditHandler; h != nil {
					staff.Get("/audit", h.List)
				}
			})
		}
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func ready(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := p.PingContext(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		state := "ready"
		if status != http.StatusOK {
			state = "degraded"
		}
		writeJSON(w, status, map[string]any{"status": state, "checks": results})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
