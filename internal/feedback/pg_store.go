package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore persists feedback in the feedback table.
type PGStore struct {
	db  pgQuerier
	now func() time.Time
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("feedback: pgx pool required")
	}
	return &PGStore{db: pool, now: time.Now}
}

func newPGStoreWithQuerier(db pgQuerier) *PGStore {
	if db == nil {
		panic("feedback: querier required")
	}
	return &PGStore{db: db, now: time.Now}
}

func (s *PGStore) Save(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	query := `
		INSERT INTO feedback (user_id, message_id, helpful, feedback_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, message_id) DO UPDATE
		SET helpful = EXCLUDED.helpful,
		    feedback_text = EXCLUDED.feedback_text,
		    created_at = EXCLUDED.created_at
	`
	if _, err := s.db.Exec(ctx, query, r.UserID, r.MessageID, r.Helpful, r.FeedbackText, r.Timestamp); err != nil {
		return fmt.Errorf("feedback: save: %w", err)
	}
	return nil
}

func (s *PGStore) Summary(ctx context.Context) (Summary, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE helpful) FROM feedback`
	var count, helpful int
	if err := s.db.QueryRow(ctx, query).Scan(&count, &helpful); err != nil {
		return Summary{}, fmt.Errorf("feedback: summary: %w", err)
	}
	return NewSummary(count, helpful), nil
}
