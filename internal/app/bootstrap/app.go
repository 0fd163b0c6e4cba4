// Package bootstrap assembles the triage service from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/careline-triage/internal/api/router"
	"github.com/wolfman30/careline-triage/internal/compliance"
	appconfig "github.com/wolfman30/careline-triage/internal/config"
	"github.com/wolfman30/careline-triage/internal/conversation"
	"github.com/wolfman30/careline-triage/internal/ehr"
	"github.com/wolfman30/careline-triage/internal/feedback"
	httpmiddleware "github.com/wolfman30/careline-triage/internal/http/middleware"
	"github.com/wolfman30/careline-triage/internal/intent"
	"github.com/wolfman30/careline-triage/internal/observability/metrics"
	"github.com/wolfman30/careline-triage/internal/pipeline"
	"github.com/wolfman30/careline-triage/internal/responder"
	"github.com/wolfman30/careline-triage/internal/support"
	"github.com/wolfman30/careline-triage/internal/voice"
	"github.com/wolfman30/careline-triage/internal/webchat"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

// App is the assembled service: the HTTP handler plus the periodic
// background tasks that keep its state tidy.
type App struct {
	Engine   *pipeline.Engine
	Handler  http.Handler
	Registry *prometheus.Registry

	contexts    conversation.Store
	feedback    feedback.Store
	escalations *support.EscalationService
	metrics     *metrics.PipelineMetrics

	logger *logging.Logger
	db     *sql.DB
	pool   *pgxpool.Pool
	redis  *redis.Client
}

// New wires every component from cfg. Postgres, Redis, SQS and SendGrid
// are optional; in-memory or stub fallbacks take their place when unset.
func New(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	model, err := intent.Train(intent.Corpus())
	if err != nil {
		return nil, fmt.Errorf("bootstrap: train intent model: %w", err)
	}

	app := &App{logger: logger}

	app.redis = BuildRedisClient(ctx, cfg, logger, true)
	app.contexts = BuildContextStore(cfg, app.redis, logger)

	app.db, err = OpenDatabase(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.pool = ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	app.feedback = BuildFeedbackStore(app.pool, logger)

	ticketPublisher, err := BuildTicketPublisher(ctx, cfg, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.metrics = metrics.NewPipelineMetrics(app.Registry)

	engineCfg := pipeline.Config{
		Model:    model,
		Contexts: app.contexts,
		Composer: buildComposer(cfg),
		Tickets:  ticketPublisher,
		Metrics:  app.metrics,
		Logger:   logger,
		Features: cfg.Features(),
	}

	var auditService *compliance.AuditService
	if app.db != nil {
		auditService = compliance.NewAuditService(app.db)
		engineCfg.Audit = auditService
		app.escalations = support.NewEscalationService(app.db, BuildEmailSender(ctx, cfg, logger), cfg.EscalationEmail, logger)
		engineCfg.Escalations = app.escalations
	} else {
		logger.Warn("DATABASE_URL not set; audit trail and escalations disabled")
	}
	if cfg.DisclaimerEnabled {
		engineCfg.Disclaimer = compliance.NewDisclaimerService(auditService, compliance.ParseDisclaimerLevel(cfg.DisclaimerLevel))
	}
	if cfg.EHREnabled {
		engineCfg.EHR = ehr.NewMockClient()
	}
	if cfg.VoiceInputEnabled || cfg.VoiceOutputEnabled {
		engineCfg.Voice = voice.NewStubService(cfg.VoiceStubDelay)
	}

	app.Engine, err = pipeline.NewEngine(engineCfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	chat := webchat.NewHandler(app.Engine, app.contexts, logger)
	app.Engine.SetEscalationNotifier(chat)

	routerCfg := &router.Config{
		Logger:             logger,
		PipelineHandler:    pipeline.NewHandler(app.Engine, logger),
		FeedbackHandler:    feedback.NewHandler(app.feedback, logger),
		ChatHandler:        chat,
		MetricsHandler:     promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StaffAuthSecret:    cfg.StaffAuthSecret,
		ReadinessChecks:    map[string]router.Pinger{},
	}
	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if app.db != nil {
		routerCfg.EscalationHandler = support.NewHandler(app.escalations, logger)
		routerCfg.AuditHandler = compliance.NewAuditHandler(auditService, logger)
		routerCfg.ReadinessChecks["postgres"] = app.db
	}
	if app.redis != nil {
		routerCfg.ReadinessChecks["redis"] = redisPinger{app.redis}
	}
	app.Handler = router.New(routerCfg)

	return app, nil
}

// Close releases every connection the app opened.
func (a *App) Close() error {
	var errs []error
	if a.contexts != nil {
		errs = append(errs, a.contexts.Close())
	} else if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func buildComposer(cfg *appconfig.Config) *responder.Composer {
	if cfg.ResponseSeed != 0 {
		return responder.NewSeededComposer(cfg.ResponseSeed)
	}
	return responder.NewComposer(nil, nil)
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
