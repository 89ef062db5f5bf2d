package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"fitment_chat_backend/internal/catalog"
	"fitment_chat_backend/internal/chat"
	"fitment_chat_backend/internal/chat/session"
	apphttp "fitment_chat_backend/internal/http"
	"fitment_chat_backend/internal/http/router"
	"fitment_chat_backend/platform/config"
	"fitment_chat_backend/platform/db"
	"fitment_chat_backend/platform/logger"
	"fitment_chat_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// The catalog store being down must not keep the process from booting:
	// the diagnostics endpoints exist precisely to debug that situation.
	// Migrations therefore retry but never panic.
	if cfg.DatabaseURL != "" {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, "migrations")
		}); err != nil {
			log.Warn("database migrations not applied, continuing", "error", err)
		} else {
			log.Info("database migrations complete")
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to configure database pool", "error", err)
		panic("failed to configure database pool: " + err.Error())
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Warn("catalog store unreachable at boot, lookups will fail until it recovers", "error", err)
	} else {
		log.Info("database connection established")
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	sessionStore, closeSessions := initSessionStore(cfg, log)
	if closeSessions != nil {
		defer closeSessions()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, cfg, val, log)

	chatModule, err := chat.NewModule(catalogModule.Service(), sessionStore, cfg, log)
	if err != nil {
		log.Error("failed to initialize chat module", "error", err)
		panic("failed to initialize chat module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			catalogModule,
			chatModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initSessionStore picks Redis when configured, in-process memory otherwise.
func initSessionStore(cfg config.SessionConfig, log *logger.Logger) (session.Store, func()) {
	if cfg.GetRedisURL() == "" {
		log.Info("REDIS_URL not configured; conversation contexts held in memory")
		return session.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL, falling back to in-memory sessions", "error", err)
		return session.NewMemoryStore(), nil
	}

	client := redis.NewClient(opts)
	log.Info("conversation contexts stored in redis", "ttl", cfg.GetSessionTTL().String())
	return session.NewRedisStore(client, cfg.GetSessionTTL()), func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}
