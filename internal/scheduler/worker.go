package scheduler

import (
	"context"
	"fmt"

	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ObjectDeleter removes stored objects by logical name.
type ObjectDeleter interface {
	Delete(ctx context.Context, name string) (bool, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	deleter ObjectDeleter
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, deleter ObjectDeleter, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		deleter: deleter,
		log:     log,
	}

	mux.HandleFunc(TaskOrphanObjectDelete, w.handleOrphanObjectDelete)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleOrphanObjectDelete(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOrphanObjectPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if w.deleter == nil {
		return fmt.Errorf("%w: object storage not configured", asynq.SkipRetry)
	}

	existed, err := w.deleter.Delete(ctx, payload.ObjectName)
	if err != nil {
		w.log.Warn("orphan object delete failed", "object", payload.ObjectName, "visit_id", payload.VisitID, "error", err)
		return err
	}

	w.log.Info("orphan object cleaned up",
		"object", payload.ObjectName,
		"visit_id", payload.VisitID,
		"client_id", payload.ClientID,
		"existed", existed,
	)
	return nil
}
