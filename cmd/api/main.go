package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales_visits_backend/internal/adapters/storage"
	apphttp "sales_visits_backend/internal/http"
	"sales_visits_backend/internal/http/router"
	"sales_visits_backend/internal/identity"
	"sales_visits_backend/internal/salesplans"
	"sales_visits_backend/internal/scheduler"
	"sales_visits_backend/internal/visits"
	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/db"
	"sales_visits_backend/platform/logger"
	"sales_visits_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
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

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	directory, closeDirectory := initDirectory(ctx, cfg, log)
	if closeDirectory != nil {
		defer closeDirectory()
	}

	gateway, closeStorage := initStorage(ctx, cfg, log)
	if closeStorage != nil {
		defer closeStorage()
	}

	cleanupScheduler, closeScheduler := initCleanupScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	visitsModule := visits.NewModule(pool, directory, cfg, log)
	if gateway != nil {
		visitsModule.Service.SetObjectStore(gateway)
	}
	if cleanupScheduler != nil {
		visitsModule.Service.SetCleanupScheduler(cleanupScheduler)
	}

	salesPlansModule := salesplans.NewModule(pool, directory, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			salesPlansModule,
			visitsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initDirectory builds the identity gateway, cached in Redis when REDIS_URL is set.
func initDirectory(ctx context.Context, cfg *config.Config, log *logger.Logger) (identity.Directory, func()) {
	client := identity.NewClient(cfg, log)
	if !cfg.GetIdentityFailOpen() {
		log.Info("identity failure policy: closed")
	} else {
		log.Warn("identity failure policy: open; unreachable identity service treats ids as existing")
	}

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; identity lookups are not cached")
		return client, nil
	}

	rdb, err := identity.OpenRedis(ctx, cfg)
	if err != nil {
		log.Error("failed to connect identity cache; continuing uncached", "error", err)
		return client, nil
	}

	return identity.NewCachedDirectory(client, rdb, cfg.GetIdentityCacheTTL(), log), func() {
		_ = rdb.Close()
	}
}

// initStorage opens the configured object storage backend and makes sure its
// bucket exists. It returns a nil gateway when storage is disabled.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage.Gateway, func()) {
	backend, err := storage.OpenBackend(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize storage backend", "error", err)
		panic("failed to initialize storage backend: " + err.Error())
	}
	if backend == nil {
		log.Warn("STORAGE_BACKEND is none; visit attachments disabled")
		return nil, nil
	}

	gateway := storage.NewGateway(backend, cfg, log)
	if err := withRetry(ctx, log, "ensure storage bucket", 5, 2*time.Second, func() error {
		return gateway.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetStorageBucket())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage gateway initialized", "backend", backend.Name(), "bucket", cfg.GetStorageBucket(), "folder", cfg.GetStorageFolder())

	var closeFn func()
	if closer, ok := backend.(io.Closer); ok {
		closeFn = func() { _ = closer.Close() }
	}
	return gateway, closeFn
}

func initCleanupScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; orphaned uploads are only logged")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize cleanup scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
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

	return errors.New(name + ": " + lastErr.Error())
}
