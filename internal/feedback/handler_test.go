package feedback

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_SubmitAndSummary(t *testing.T) {
	h := NewHandler(NewMemoryStore(), nil)

	for i, body := range []string{
		`{"userId":"u1","messageId":"m1","helpful":true}`,
		`{"userId":"u1","messageId":"m2","helpful":true}`,
		`{"userId":"u2","messageId":"m1","helpful":false,"feedbackText":"too vague"}`,
	} {
		rec := httptest.NewRecorder()
		h.Submit(rec, httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/v1/feedback/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, Summary{Count: 3, HelpfulCount: 2, HelpfulPercentage: 66.7}, got)
}

func TestHandler_SubmitRejectsBadInput(t *testing.T) {
	h := NewHandler(NewMemoryStore(), nil)

	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(`{"helpful":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user id and message id are required")
}
