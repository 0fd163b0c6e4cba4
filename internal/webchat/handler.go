// Package webchat is a live chat channel: every message a visitor sends is
// analyzed and the composed reply is pushed back over the same socket.
package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/careline-triage/internal/conversation"
	"github.com/wolfman30/careline-triage/internal/pipeline"
	"github.com/wolfman30/careline-triage/internal/support"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

const historyLimit = 50

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// HistoryReader reads a user's recent context.
type HistoryReader interface {
	Get(ctx context.Context, userID string) (*conversation.Context, bool, error)
}

// Handler manages chat connections.
type Handler struct {
	analyzer Analyzer
	history  HistoryReader
	logger   *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // userID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.conn, msg)
}

// InboundMessage is what the client sends.
type InboundMessage struct {
	Type     string           `json:"type"` // "message", "ping"
	Text     string           `json:"text"`
	TicketID string           `json:"ticket_id,omitempty"`
	Profile  pipeline.Profile `json:"profile"`
}

// OutboundMessage is what the server sends.
type OutboundMessage struct {
	Type         string           `json:"type"` // "session", "typing", "message", "escalation", "error", "pong"
	Text         string           `json:"text,omitempty"`
	Role         string           `json:"role,omitempty"`
	SessionID    string           `json:"session_id,omitempty"`
	MessageID    string           `json:"message_id,omitempty"`
	UrgencyLevel string           `json:"urgency_level,omitempty"`
	Escalated    bool             `json:"escalated,omitempty"`
	Timestamp    string           `json:"timestamp,omitempty"`
	Messages     []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is one earlier user message, already redacted.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Intent    string `json:"intent,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a chat handler. history may be nil.
func NewHandler(analyzer Analyzer, history HistoryReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		analyzer: analyzer,
		history:  history,
		logger:   logger.Component("webchat"),
		sessions: make(map[string]*wsConn),
	}
}

// HandleWebSocket upgrades to a websocket for /v1/chat/ws?user=<id>.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing user parameter"})
		return
	}

	wsc := &wsConn{conn: conn}
	sessionID := uuid.NewString()
	_ = wsc.send(OutboundMessage{Type: "session", SessionID: sessionID})

	h.mu.Lock()
	h.sessions[userID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[userID] == wsc {
			delete(h.sessions, userID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("connection opened", "user_id", userID, "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("connection closed", "user_id", userID, "error", err)
			return
		}
		switch {
		case msg.Type == "ping":
			_ = wsc.send(OutboundMessage{Type: "pong"})
		case msg.Type == "message" && strings.TrimSpace(msg.Text) != "":
			_ = wsc.send(OutboundMessage{Type: "typing"})
			_ = wsc.send(h.reply(ctx, userID, msg))
		}
	}
}

func (h *Handler) reply(ctx context.Context, userID string, msg InboundMessage) OutboundMessage {
	res, err := h.analyzer.Analyze(ctx, pipeline.Request{
		UserID:   userID,
		Message:  msg.Text,
		TicketID: msg.TicketID,
		Channel:  pipeline.ChannelWebchat,
		Profile:  msg.Profile,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidInput) {
			return OutboundMessage{Type: "error", Text: "Please enter a message."}
		}
		h.logger.Error("analysis failed", "user_id", userID, "error", err)
		return OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."}
	}
	return OutboundMessage{
		Type:         "message",
		Role:         "assistant",
		Text:         res.Response,
		MessageID:    res.MessageID,
		UrgencyLevel: string(res.Triage.UrgencyLevel),
		Escalated:    res.Escalated,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) loadHistory(ctx context.Context, userID string) []HistoryMessage {
	if h.history == nil {
		return nil
	}
	snapshot, ok, err := h.history.Get(ctx, userID)
	if err != nil {
		h.logger.Warn("failed to load history", "user_id", userID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	entries := snapshot.History
	if len(entries) > historyLimit {
		entries = entries[len(entries)-historyLimit:]
	}
	out := make([]HistoryMessage, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryMessage{
			Role:      "user",
			Text:      e.Message,
			Intent:    string(e.Analysis.Intent),
			Timestamp: e.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

// SendToUser pushes a message to the user's open socket, if any.
func (h *Handler) SendToUser(userID string, msg OutboundMessage) bool {
	h.mu.RLock()
	wsc, ok := h.sessions[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return wsc.send(msg) == nil
}

// NotifyEscalation tells a connected user that the care team was alerted.
// Users without an open socket are skipped.
func (h *Handler) NotifyEscalation(ctx context.Context, esc *support.Escalation) {
	if esc == nil || esc.UserID == "" {
		return
	}
	text := "A member of our care team has been notified and will follow up with you shortly."
	if esc.Priority == support.PriorityHigh {
		text = "Our care team has been alerted. If this is a medical emergency, call 911 now."
	}
	sent := h.SendToUser(esc.UserID, OutboundMessage{
		Type:         "escalation",
		Role:         "system",
		Text:         text,
		MessageID:    esc.MessageID,
		UrgencyLevel: esc.UrgencyLevel,
		Escalated:    true,
		Timestamp:    esc.CreatedAt.UTC().Format(time.RFC3339),
	})
	if sent {
		h.logger.Info("escalation notice delivered", "user_id", esc.UserID, "escalation_id", esc.ID)
	}
}

// HandleMessage is the HTTP fallback for clients without websockets.
// POST /v1/chat/messages
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		InboundMessage
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "user_id and text are required", http.StatusBadRequest)
		return
	}

	out := h.reply(r.Context(), req.UserID, req.InboundMessage)
	status := http.StatusOK
	if out.Type == "error" {
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

// HandleHistory returns the user's recent messages. It is mounted behind
// staff auth; sockets never replay history.
// GET /v1/staff/chat/history?user=<id>
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		http.Error(w, "user parameter required", http.StatusBadRequest)
		return
	}
	history := h.loadHistory(r.Context(), userID)
	if history == nil {
		history = []HistoryMessage{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": history})
}
