package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	got    AuditFilter
	events []AuditEvent
	err    error
}

func (f *fakeQuerier) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	f.got = filter
	return f.events, f.err
}

func TestAuditHandler_List(t *testing.T) {
	q := &fakeQuerier{events: []AuditEvent{{ID: "1", EventType: EventPHIDetected, Categories: []string{"ssn"}}}}
	h := newAuditHandler(q, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/staff/audit?user_id=u1&event_type=compliance.phi_detected&limit=5000&since=2024-03-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", q.got.UserID)
	assert.Equal(t, EventPHIDetected, q.got.EventType)
	assert.Equal(t, maxAuditLimit, q.got.Limit)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), q.got.StartTime)
	assert.True(t, q.got.EndTime.IsZero())

	var body struct {
		Events []AuditEvent `json:"events"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, []string{"ssn"}, body.Events[0].Categories)
}

func TestAuditHandler_BadParams(t *testing.T) {
	h := newAuditHandler(&fakeQuerier{}, nil)
	for _, path := range []string{"/v1/staff/audit?limit=-1", "/v1/staff/audit?until=yesterday"} {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestAuditHandler_QueryError(t *testing.T) {
	h := newAuditHandler(&fakeQuerier{err: errors.New("db down")}, nil)
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/staff/audit", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
