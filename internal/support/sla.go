package support

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/careline-triage/pkg/logging"
)

const (
	DefaultAckWindow        = 10 * time.Minute
	DefaultReminderInterval = time.Minute
)

type overdueReminder interface {
	RemindOverdue(ctx context.Context, cutoff time.Time) (int, error)
}

// SLAWatcher reminds on-call staff about emergencies nobody acknowledged
// within the acknowledgement window.
type SLAWatcher struct {
	service   overdueReminder
	ackWindow time.Duration
	logger    *logging.Logger
	now       func() time.Time

	tick <-chan time.Time
	stop func()
}

// SLAWatcherConfig configures an SLAWatcher. Tick and Stop replace the
// internal ticker in tests.
type SLAWatcherConfig struct {
	Service   *EscalationService
	AckWindow time.Duration
	Interval  time.Duration
	Logger    *logging.Logger
	Now       func() time.Time

	Tick <-chan time.Time
	Stop func()
}

func NewSLAWatcher(cfg SLAWatcherConfig) (*SLAWatcher, error) {
	if cfg.Service == nil {
		return nil, errors.New("support: sla watcher requires escalation service")
	}
	return newSLAWatcher(cfg.Service, cfg), nil
}

func newSLAWatcher(service overdueReminder, cfg SLAWatcherConfig) *SLAWatcher {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AckWindow <= 0 {
		cfg.AckWindow = DefaultAckWindow
	}
	tick, stop := cfg.Tick, cfg.Stop
	if tick == nil {
		interval := cfg.Interval
		if interval <= 0 {
			interval = DefaultReminderInterval
		}
		ticker := time.NewTicker(interval)
		tick, stop = ticker.C, ticker.Stop
	}
	return &SLAWatcher{
		service:   service,
		ackWindow: cfg.AckWindow,
		logger:    cfg.Logger,
		now:       cfg.Now,
		tick:      tick,
		stop:      stop,
	}
}

// Start blocks, checking for overdue escalations on every tick.
func (w *SLAWatcher) Start(ctx context.Context) {
	if w == nil {
		return
	}
	defer func() {
		if w.stop != nil {
			w.stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.tick:
			_, _ = w.CheckOnce(ctx)
		}
	}
}

// CheckOnce sends reminders for escalations pending longer than the window.
func (w *SLAWatcher) CheckOnce(ctx context.Context) (int, error) {
	sent, err := w.service.RemindOverdue(ctx, w.now().Add(-w.ackWindow))
	if err != nil {
		w.logger.Warn("escalation reminder check failed", "error", err)
		return sent, err
	}
	if sent > 0 {
		w.logger.Info("sent escalation reminders", "count", sent)
	}
	return sent, nil
}
