package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const contextKeyPrefix = "careline:context:"

// RedisStore keeps each user's history in a Redis list. Idle expiry is
// delegated to key TTLs, refreshed on every update.
type RedisStore struct {
	redis  *redis.Client
	opts   Options
	tracer trace.Tracer
	now    func() time.Time
}

// NewRedisStore wraps client. It panics on a nil client.
func NewRedisStore(client *redis.Client, opts Options) *RedisStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		opts:   opts.withDefaults(),
		tracer: otel.Tracer("careline/conversation"),
		now:    time.Now,
	}
}

func (s *RedisStore) Update(ctx context.Context, userID string, entry Entry) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	ctx, span := s.tracer.Start(ctx, "conversation.update")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal entry: %w", err)
	}

	key := contextKey(userID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.opts.MaxHistory), -1)
	pipe.Expire(ctx, key, s.opts.IdleTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*Context, bool, error) {
	userID = strings.TrimSpace(userID)
	ctx, span := s.tracer.Start(ctx, "conversation.get")
	defer span.End()

	raw, err := s.redis.LRange(ctx, contextKey(userID), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("conversation: failed to load history: %w", err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}

	c := &Context{UserID: userID, History: make([]Entry, 0, len(raw))}
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			span.RecordError(err)
			return nil, false, fmt.Errorf("conversation: failed to decode entry: %w", err)
		}
		c.History = append(c.History, e)
	}
	c.LastInteraction = c.History[len(c.History)-1].Timestamp
	return c, true, nil
}

// Sweep is a no-op; Redis expires idle keys itself.
func (s *RedisStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, contextKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("conversation: failed to scan contexts: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}

func contextKey(userID string) string {
	return contextKeyPrefix + userID
}
