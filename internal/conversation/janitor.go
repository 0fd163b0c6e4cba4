package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/careline-triage/pkg/logging"
)

// DefaultSweepInterval is how often the janitor evicts idle contexts.
const DefaultSweepInterval = 15 * time.Minute

// SweepRecorder receives sweep results, typically metrics.
type SweepRecorder interface {
	ObserveContextSweep(evicted, remaining int)
}

// Janitor periodically evicts idle contexts through the Store interface.
type Janitor struct {
	store    Store
	logger   *logging.Logger
	recorder SweepRecorder
	now      func() time.Time

	tick <-chan time.Time
	stop func()
}

// JanitorConfig configures a Janitor. Tick and Stop replace the internal
// ticker in tests.
type JanitorConfig struct {
	Store    Store
	Interval time.Duration
	Logger   *logging.Logger
	Recorder SweepRecorder
	Now      func() time.Time

	Tick <-chan time.Time
	Stop func()
}

func NewJanitor(cfg JanitorConfig) (*Janitor, error) {
	if cfg.Store == nil {
		return nil, errors.New("conversation: janitor requires store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	tick := cfg.Tick
	stop := cfg.Stop
	if tick == nil {
		interval := cfg.Interval
		if interval <= 0 {
			interval = DefaultSweepInterval
		}
		ticker := time.NewTicker(interval)
		tick = ticker.C
		stop = ticker.Stop
	}

	return &Janitor{
		store:    cfg.Store,
		logger:   logger,
		recorder: cfg.Recorder,
		now:      now,
		tick:     tick,
		stop:     stop,
	}, nil
}

// Start blocks, sweeping on every tick until ctx is done.
func (j *Janitor) Start(ctx context.Context) {
	if j == nil {
		return
	}
	defer func() {
		if j.stop != nil {
			j.stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.tick:
			_, _ = j.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single sweep. Failures are logged and returned.
func (j *Janitor) SweepOnce(ctx context.Context) (int, error) {
	evicted, err := j.store.Sweep(ctx, j.now())
	if err != nil {
		j.logger.Warn("context sweep failed", "error", err)
		return 0, err
	}
	remaining, err := j.store.Len(ctx)
	if err != nil {
		j.logger.Warn("context count failed", "error", err)
		remaining = -1
	}
	if j.recorder != nil && remaining >= 0 {
		j.recorder.ObserveContextSweep(evicted, remaining)
	}
	if evicted > 0 {
		j.logger.Info("evicted idle contexts", "evicted", evicted, "remaining", remaining)
	}
	return evicted, nil
}
