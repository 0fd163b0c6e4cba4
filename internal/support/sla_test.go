package support

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminder struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakeReminder) RemindOverdue(ctx context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return 1, f.err
}

func (f *fakeReminder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestSLAWatcher_ChecksOnTick(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reminder := &fakeReminder{}
	tick := make(chan time.Time, 1)
	stopped := make(chan struct{})
	w := newSLAWatcher(reminder, SLAWatcherConfig{
		AckWindow: 5 * time.Minute,
		Now:       func() time.Time { return now },
		Tick:      tick,
		Stop:      func() { close(stopped) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	tick <- now
	require.Eventually(t, func() bool { return reminder.calls() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, now.Add(-5*time.Minute), reminder.cutoffs[0])

	cancel()
	<-done
	<-stopped
}

func TestSLAWatcher_CheckOnceReturnsError(t *testing.T) {
	w := newSLAWatcher(&fakeReminder{err: errors.New("db down")}, SLAWatcherConfig{Tick: make(chan time.Time)})
	_, err := w.CheckOnce(context.Background())
	assert.Error(t, err)
}

func TestNewSLAWatcher_RequiresService(t *testing.T) {
	_, err := NewSLAWatcher(SLAWatcherConfig{})
	assert.Error(t, err)
}
