package bootstrap

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	appconfig "github.com/wolfman30/careline-triage/internal/config"
	"github.com/wolfman30/careline-triage/internal/conversation"
	"github.com/wolfman30/careline-triage/internal/feedback"
	"github.com/wolfman30/careline-triage/internal/support"
)

// backgroundTask blocks until its context is done.
type backgroundTask interface {
	Start(ctx context.Context)
}

// RunBackground runs the context janitor, the feedback aggregator and,
// when escalations are persisted, the acknowledgement watcher. It blocks
// until ctx is canceled.
func (a *App) RunBackground(ctx context.Context, cfg *appconfig.Config) error {
	tasks, err := a.backgroundTasks(cfg)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			task.Start(gctx)
			return nil
		})
	}
	a.logger.Info("background tasks started", "count", len(tasks))
	return g.Wait()
}

func (a *App) backgroundTasks(cfg *appconfig.Config) ([]backgroundTask, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	janitor, err := conversation.NewJanitor(conversation.JanitorConfig{
		Store:    a.contexts,
		Interval: cfg.ContextSweepInterval,
		Logger:   a.logger,
		Recorder: a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: janitor: %w", err)
	}
	aggregator, err := feedback.NewAggregator(feedback.AggregatorConfig{
		Store:    a.feedback,
		Interval: cfg.FeedbackAggregateInterval,
		Logger:   a.logger,
		Recorder: a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: aggregator: %w", err)
	}
	tasks := []backgroundTask{janitor, aggregator}

	if a.escalations != nil {
		watcher, err := support.NewSLAWatcher(support.SLAWatcherConfig{
			Service:   a.escalations,
			AckWindow: cfg.EscalationAckWindow,
			Interval:  cfg.ReminderInterval,
			Logger:    a.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: sla watcher: %w", err)
		}
		tasks = append(tasks, watcher)
	}
	return tasks, nil
}
