package feedback

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/careline-triage/pkg/logging"
)

// DefaultAggregateInterval is how often the aggregator summarizes feedback.
const DefaultAggregateInterval = time.Hour

// SummaryRecorder receives each computed summary.
type SummaryRecorder interface {
	ObserveFeedbackSummary(count, helpful int, percentage float64)
}

// Aggregator periodically summarizes feedback and reports the result.
type Aggregator struct {
	store    Store
	logger   *logging.Logger
	recorder SummaryRecorder

	tick <-chan time.Time
	stop func()
}

// AggregatorConfig configures an Aggregator. Tick and Stop replace the
// internal ticker in tests.
type AggregatorConfig struct {
	Store    Store
	Interval time.Duration
	Logger   *logging.Logger
	Recorder SummaryRecorder

	Tick <-chan time.Time
	Stop func()
}

func NewAggregator(cfg AggregatorConfig) (*Aggregator, error) {
	if cfg.Store == nil {
		return nil, errors.New("feedback: aggregator requires store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	tick := cfg.Tick
	stop := cfg.Stop
	if tick == nil {
		interval := cfg.Interval
		if interval <= 0 {
			interval = DefaultAggregateInterval
		}
		ticker := time.NewTicker(interval)
		tick = ticker.C
		stop = ticker.Stop
	}
	return &Aggregator{
		store:    cfg.Store,
		logger:   logger,
		recorder: cfg.Recorder,
		tick:     tick,
		stop:     stop,
	}, nil
}

// Start aggregates once immediately, then on every tick until ctx is done.
func (a *Aggregator) Start(ctx context.Context) {
	if a == nil {
		return
	}
	defer func() {
		if a.stop != nil {
			a.stop()
		}
	}()

	_, _ = a.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.tick:
			_, _ = a.RunOnce(ctx)
		}
	}
}

// RunOnce computes and reports a summary. Failures are logged and returned.
func (a *Aggregator) RunOnce(ctx context.Context) (Summary, error) {
	summary, err := a.store.Summary(ctx)
	if err != nil {
		a.logger.Warn("feedback aggregation failed", "error", err)
		return Summary{}, err
	}
	if a.recorder != nil {
		a.recorder.ObserveFeedbackSummary(summary.Count, summary.HelpfulCount, summary.HelpfulPercentage)
	}
	a.logger.Info("feedback summary",
		"count", summary.Count,
		"helpful_count", summary.HelpfulCount,
		"helpful_percentage", summary.HelpfulPercentage,
	)
	return summary, nil
}
