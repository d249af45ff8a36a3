package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales_visits_backend/internal/adapters/storage"
	"sales_visits_backend/internal/scheduler"
	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var deleter scheduler.ObjectDeleter
	backend, err := storage.OpenBackend(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize storage backend", "error", err)
		panic("failed to initialize storage backend: " + err.Error())
	}
	if backend != nil {
		if closer, ok := backend.(io.Closer); ok {
			defer func() { _ = closer.Close() }()
		}
		gateway := storage.NewGateway(backend, cfg, log)
		if err := withRetry(ctx, log, "ensure storage bucket", 5, 2*time.Second, func() error {
			return gateway.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		deleter = gateway
	} else {
		log.Warn("STORAGE_BACKEND is none; orphan cleanup tasks will be discarded")
	}

	worker, err := scheduler.NewWorker(cfg, deleter, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
