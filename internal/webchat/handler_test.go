package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/careline-triage/internal/conversation"
	"github.com/wolfman30/careline-triage/internal/intent"
	"github.com/wolfman30/careline-triage/internal/pipeline"
	"github.com/wolfman30/careline-triage/internal/support"
	"github.com/wolfman30/careline-triage/internal/triage"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	requests []pipeline.Request
	err      error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{
		MessageID: "msg-1",
		Response:  "reply to: " + req.Message,
		Triage:    triage.Result{UrgencyLevel: triage.Routine},
	}, nil
}

func newHistory(t *testing.T) *conversation.MemoryStore {
	t.Helper()
	store := conversation.NewMemoryStore(conversation.Options{}, nil)
	require.NoError(t, store.Update(context.Background(), "u1", conversation.Entry{
		Message:   "I need a refill",
		Analysis:  conversation.Analysis{Intent: intent.Prescription},
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}))
	return store
}

func TestHandleMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := NewHandler(analyzer, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages",
		strings.NewReader(`{"user_id":"u1","text":"hello there"}`))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out OutboundMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "message", out.Type)
	assert.Equal(t, "assistant", out.Role)
	assert.Equal(t, "reply to: hello there", out.Text)
	assert.Equal(t, string(triage.Routine), out.UrgencyLevel)

	require.Len(t, analyzer.requests, 1)
	assert.Equal(t, pipeline.ChannelWebchat, analyzer.requests[0].Channel)
	assert.Equal(t, "u1", analyzer.requests[0].UserID)
}

func TestHandleMessage_Validation(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{}, nil, nil)

	for _, body := range []string{`{bad`, `{"user_id":"","text":"hi"}`, `{"user_id":"u1","text":"  "}`} {
		rec := httptest.NewRecorder()
		h.HandleMessage(rec, httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHandleMessage_AnalyzerError(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{err: fmt.Errorf("wrap: %w", pipeline.ErrUpstreamUnavailable)}, nil, nil)

	rec := httptest.NewRecorder()
	h.HandleMessage(rec, httptest.NewRequest(http.MethodPost, "/v1/chat/messages",
		strings.NewReader(`{"user_id":"u1","text":"hello"}`)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var out OutboundMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "error", out.Type)
}

func TestReply_InvalidInput(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{err: errors.Join(pipeline.ErrInvalidInput)}, nil, nil)
	out := h.reply(context.Background(), "u1", InboundMessage{Type: "message", Text: "x"})
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, "Please enter a message.", out.Text)
}

func TestHandleHistory(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{}, newHistory(t), nil)

	rec := httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/staff/chat/history?user=u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "I need a refill", out.Messages[0].Text)
	assert.Equal(t, string(intent.Prescription), out.Messages[0].Intent)

	rec = httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/staff/chat/history?user=nobody", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/staff/chat/history", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebSocketConversation(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := NewHandler(analyzer, newHistory(t), nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=u1"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	receive := func() OutboundMessage {
		var msg OutboundMessage
		require.NoError(t, websocket.JSON.Receive(conn, &msg))
		return msg
	}

	session := receive()
	assert.Equal(t, "session", session.Type)
	assert.NotEmpty(t, session.SessionID)

	// Stored history is staff-only, so the socket goes straight to pong.
	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	assert.Equal(t, "pong", receive().Type)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "book a checkup"}))
	assert.Equal(t, "typing", receive().Type)
	reply := receive()
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, "reply to: book a checkup", reply.Text)

	assert.True(t, h.SendToUser("u1", OutboundMessage{Type: "message", Text: "follow up"}))
	assert.Equal(t, "follow up", receive().Text)
	assert.False(t, h.SendToUser("someone-else", OutboundMessage{Type: "message"}))
}

func TestNotifyEscalation(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{}, nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/?user=u2", "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	receive := func() OutboundMessage {
		var msg OutboundMessage
		require.NoError(t, websocket.JSON.Receive(conn, &msg))
		return msg
	}
	assert.Equal(t, "session", receive().Type)
	// The pong proves the session is registered.
	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	assert.Equal(t, "pong", receive().Type)

	h.NotifyEscalation(context.Background(), &support.Escalation{
		UserID:       "u2",
		MessageID:    "msg-9",
		Priority:     support.PriorityMedium,
		UrgencyLevel: "urgent",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	notice := receive()
	assert.Equal(t, "escalation", notice.Type)
	assert.True(t, notice.Escalated)
	assert.Equal(t, "urgent", notice.UrgencyLevel)
	assert.Equal(t, "msg-9", notice.MessageID)
	assert.Contains(t, notice.Text, "care team")

	h.NotifyEscalation(context.Background(), &support.Escalation{UserID: "u2", Priority: support.PriorityHigh})
	assert.Contains(t, receive().Text, "911")

	// Offline users and empty notices are ignored.
	h.NotifyEscalation(context.Background(), &support.Escalation{UserID: "offline"})
	h.NotifyEscalation(context.Background(), nil)
}

func TestWebSocketRequiresUser(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{}, nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/", "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "error", msg.Type)
}
