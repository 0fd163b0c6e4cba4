// Package feedback records whether patients found replies helpful and
// aggregates the results.
package feedback

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"
)

// ErrInvalidRecord is returned when a record lacks its key.
var ErrInvalidRecord = errors.New("feedback: user id and message id are required")

// Record is one piece of feedback, keyed by (UserID, MessageID).
type Record struct {
	UserID       string    `json:"userId"`
	MessageID    string    `json:"messageId"`
	Helpful      bool      `json:"helpful"`
	FeedbackText string    `json:"feedbackText,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Validate trims the key fields and checks they are present.
func (r *Record) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.MessageID = strings.TrimSpace(r.MessageID)
	if r.UserID == "" || r.MessageID == "" {
		return ErrInvalidRecord
	}
	return nil
}

// Summary aggregates feedback.
type Summary struct {
	Count             int     `json:"count"`
	HelpfulCount      int     `json:"helpfulCount"`
	HelpfulPercentage float64 `json:"helpfulPercentage"`
}

// NewSummary computes the helpful percentage rounded to one decimal place.
func NewSummary(count, helpful int) Summary {
	s := Summary{Count: count, HelpfulCount: helpful}
	if count > 0 {
		s.HelpfulPercentage = math.Round(float64(helpful)/float64(count)*1000) / 10
	}
	return s
}

// Summarize aggregates records.
func Summarize(records []Record) Summary {
	helpful := 0
	for _, r := range records {
		if r.Helpful {
			helpful++
		}
	}
	return NewSummary(len(records), helpful)
}

// Store persists feedback. Saving an existing key replaces it.
type Store interface {
	Save(ctx context.Context, r Record) error
	Summary(ctx context.Context) (Summary, error)
}

type recordKey struct {
	user, message string
}

// MemoryStore keeps feedback in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]Record), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{r.UserID, r.MessageID}] = r
	return nil
}

func (s *MemoryStore) Summary(ctx context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	return Summarize(records), nil
}
