package conversation

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps contexts in process memory behind a single mutex.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*Context
	opts  Options
	now   func() time.Time
}

// NewMemoryStore creates an in-memory store. now defaults to time.Now.
func NewMemoryStore(opts Options, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		users: make(map[string]*Context),
		opts:  opts.withDefaults(),
		now:   now,
	}
}

func (s *MemoryStore) Update(ctx context.Context, userID string, entry Entry) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	now := s.now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.users[userID]
	if !ok {
		c = &Context{UserID: userID}
		s.users[userID] = c
	}
	c.History = append(c.History, entry)
	if over := len(c.History) - s.opts.MaxHistory; over > 0 {
		c.History = append([]Entry(nil), c.History[over:]...)
	}
	c.LastInteraction = now
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*Context, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return nil, false, nil
	}
	snapshot := &Context{
		UserID:          c.UserID,
		History:         append([]Entry(nil), c.History...),
		LastInteraction: c.LastInteraction,
	}
	return snapshot, true, nil
}

func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, c := range s.users {
		if now.Sub(c.LastInteraction) > s.opts.IdleTTL {
			delete(s.users, id)
			evicted++
		}
	}
	return evicted, nil
}

func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

// Close drops every context.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*Context)
	return nil
}
