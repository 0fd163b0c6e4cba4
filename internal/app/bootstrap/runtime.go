package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/careline-triage/internal/config"
	"github.com/wolfman30/careline-triage/internal/conversation"
	"github.com/wolfman30/careline-triage/internal/feedback"
	"github.com/wolfman30/careline-triage/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildContextStore returns the Redis-backed context store when a client is
// available and the in-memory store otherwise.
func BuildContextStore(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) conversation.Store {
	if logger == nil {
		logger = logging.Default()
	}
	opts := conversation.Options{}
	if cfg != nil {
		opts.MaxHistory = cfg.ContextMaxHistory
		opts.IdleTTL = cfg.ContextIdleTTL
	}
	if redisClient != nil {
		logger.Info("context store: redis")
		return conversation.NewRedisStore(redisClient, opts)
	}
	logger.Info("context store: memory")
	return conversation.NewMemoryStore(opts, nil)
}

// OpenDatabase opens a database/sql handle over the pgx driver, or returns
// nil when url is empty.
func OpenDatabase(ctx context.Context, url string, logger *logging.Logger) (*sql.DB, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping database: %w", err)
	}
	logger.Info("connected to postgres")
	return db, nil
}

// ConnectPostgresPool returns a pgx pool or nil when url is empty or the
// database cannot be reached.
func ConnectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Warn("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Warn("postgres pool not available", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildFeedbackStore returns the Postgres feedback store when a pool is
// available and the in-memory store otherwise.
func BuildFeedbackStore(pool *pgxpool.Pool, logger *logging.Logger) feedback.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if pool != nil {
		logger.Info("feedback store: postgres")
		return feedback.NewPGStore(pool)
	}
	logger.Info("feedback store: memory")
	return feedback.NewMemoryStore()
}
