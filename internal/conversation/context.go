// Package conversation keeps a bounded, idle-expiring history of recent
// message analyses per user.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/careline-triage/internal/entities"
	"github.com/wolfman30/careline-triage/internal/intent"
	"github.com/wolfman30/careline-triage/internal/sentiment"
)

const (
	DefaultMaxHistory = 10
	DefaultIdleTTL    = 30 * time.Minute
)

// ErrUserIDRequired is returned when an update has no user id.
var ErrUserIDRequired = errors.New("conversation: user id is required")

// Analysis is the per-message output of the analysis stages.
type Analysis struct {
	Intent    intent.Intent    `json:"intent"`
	Entities  entities.Bag     `json:"entities"`
	Tokens    []string         `json:"tokens"`
	Sentiment sentiment.Result `json:"sentiment"`
}

// Entry is one analyzed message. Message holds the redacted text.
type Entry struct {
	Message   string    `json:"message"`
	Analysis  Analysis  `json:"analysis"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is a user's recent history, oldest first.
type Context struct {
	UserID          string    `json:"userId"`
	History         []Entry   `json:"history"`
	LastInteraction time.Time `json:"lastInteraction"`
}

// Store owns per-user contexts. Implementations enforce the history bound
// and idle expiry and are safe for concurrent use.
type Store interface {
	// Update appends entry, evicting the oldest beyond the bound, and
	// refreshes the user's last interaction.
	Update(ctx context.Context, userID string, entry Entry) error
	// Get returns a snapshot of the user's context; ok is false when none.
	Get(ctx context.Context, userID string) (*Context, bool, error)
	// Sweep evicts contexts idle longer than the TTL as of now and reports
	// how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
	// Len reports how many users currently have a context.
	Len(ctx context.Context) (int, error)
	Close() error
}

// Options bounds a store.
type Options struct {
	MaxHistory int
	IdleTTL    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxHistory <= 0 {
		o.MaxHistory = DefaultMaxHistory
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = DefaultIdleTTL
	}
	return o
}
