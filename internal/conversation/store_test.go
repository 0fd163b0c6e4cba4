package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careline-triage/internal/intent"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func entry(i int) Entry {
	return Entry{Message: fmt.Sprintf("message %d", i), Analysis: Analysis{Intent: intent.General}, Language: "en"}
}

func TestMemoryStore_BoundedFIFO(t *testing.T) {
	store := NewMemoryStore(Options{}, nil)
	ctx := context.Background()

	for i := 1; i <= 11; i++ {
		require.NoError(t, store.Update(ctx, "user-1", entry(i)))
	}

	c, ok, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, c.History, DefaultMaxHistory)
	for i, e := range c.History {
		assert.Equal(t, fmt.Sprintf("message %d", i+2), e.Message)
	}
}

func TestMemoryStore_GetReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore(Options{}, nil)
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, "u", entry(1)))

	c, _, _ := store.Get(ctx, "u")
	c.History[0].Message = "changed"

	again, _, _ := store.Get(ctx, "u")
	assert.Equal(t, "message 1", again.History[0].Message)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_RejectsEmptyUser(t *testing.T) {
	store := NewMemoryStore(Options{}, nil)
	assert.ErrorIs(t, store.Update(context.Background(), "  ", entry(1)), ErrUserIDRequired)
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(Options{}, clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "idle", entry(1)))
	clock.Advance(20 * time.Minute)
	require.NoError(t, store.Update(ctx, "active", entry(1)))
	clock.Advance(11 * time.Minute)

	evicted, err := store.Sweep(ctx, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, ok, _ := store.Get(ctx, "idle")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "active")
	assert.True(t, ok)

	n, _ := store.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_ConcurrentUpdatesAndSweep(t *testing.T) {
	store := NewMemoryStore(Options{MaxHistory: 5}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = store.Update(ctx, fmt.Sprintf("user-%d", u), entry(i))
			}
		}(u)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_, _ = store.Sweep(ctx, time.Now())
		}
	}()
	wg.Wait()

	for u := 0; u < 8; u++ {
		c, ok, err := store.Get(ctx, fmt.Sprintf("user-%d", u))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, c.History, 5)
		assert.Equal(t, "message 49", c.History[4].Message)
	}
}

func newRedisStore(t *testing.T, opts Options) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, opts), mr
}

func TestRedisStore_BoundedFIFO(t *testing.T) {
	store, _ := newRedisStore(t, Options{})
	ctx := context.Background()

	for i := 1; i <= 11; i++ {
		require.NoError(t, store.Update(ctx, "user-1", entry(i)))
	}

	c, ok, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, c.History, 10)
	assert.Equal(t, "message 2", c.History[0].Message)
	assert.Equal(t, "message 11", c.History[9].Message)
	assert.Equal(t, c.History[9].Timestamp, c.LastInteraction)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRedisStore_IdleExpiry(t *testing.T) {
	store, mr := newRedisStore(t, Options{IdleTTL: 30 * time.Minute})
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "user-1", entry(1)))
	assert.Equal(t, 30*time.Minute, mr.TTL(contextKey("user-1")))

	mr.FastForward(31 * time.Minute)

	_, ok, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	evicted, err := store.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, evicted)
}

func TestRedisStore_Errors(t *testing.T) {
	store, mr := newRedisStore(t, Options{})
	ctx := context.Background()

	assert.ErrorIs(t, store.Update(ctx, "", entry(1)), ErrUserIDRequired)

	mr.Close()
	err := store.Update(ctx, "user-1", entry(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation: failed to persist entry")
}
