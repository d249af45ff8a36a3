package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"sales_visits_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// orphanCleanupDelay leaves room for a client retry that might still reference
// the object before it is removed.
const orphanCleanupDelay = 5 * time.Minute

type Client struct {
	client *asynq.Client
	queue  string
}

// CleanupScheduler enqueues deletion of objects left behind by failed updates.
type CleanupScheduler interface {
	ScheduleOrphanCleanup(ctx context.Context, payload OrphanObjectPayload) error
}

var _ CleanupScheduler = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) ScheduleOrphanCleanup(ctx context.Context, payload OrphanObjectPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewOrphanObjectTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(orphanCleanupDelay),
		asynq.Queue(c.queue),
		asynq.MaxRetry(10),
	)
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
