package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "identity:"

// CachedDirectory fronts a Client with a Redis cache. Only positive answers
// are cached, so a user created after a miss is seen on the next call.
// Concurrent misses for the same id share one upstream request, which is
// detached from the cancellation of whichever caller started it and bounded
// by the client timeout instead.
type CachedDirectory struct {
	client *Client
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	log    *logger.Logger
}

// NewCachedDirectory wraps client with a Redis-backed cache.
func NewCachedDirectory(client *Client, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedDirectory{client: client, rdb: rdb, ttl: ttl, log: log}
}

// OpenRedis connects to the Redis instance named by the cache config.
func OpenRedis(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Exists implements Directory.
func (d *CachedDirectory) Exists(ctx context.Context, userID string) bool {
	key := cacheKeyPrefix + "exists:" + userID

	cached, err := d.rdb.Get(ctx, key).Result()
	if err == nil && cached == "1" {
		return true
	}
	d.logCacheError(ctx, "get", err)

	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		found, lookupErr := d.client.lookup(shared, userID)
		if lookupErr == nil && found {
			d.logCacheError(ctx, "set", d.rdb.Set(shared, key, "1", d.ttl).Err())
		}
		return found, lookupErr
	})
	found, _ := v.(bool)
	return d.client.resolve(found, err)
}

// FetchDetail implements Directory.
func (d *CachedDirectory) FetchDetail(ctx context.Context, userID string) (Record, bool) {
	key := cacheKeyPrefix + "detail:" + userID

	raw, err := d.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var record Record
		if json.Unmarshal(raw, &record) == nil {
			return record, true
		}
	}
	d.logCacheError(ctx, "get", err)

	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		record, detailErr := d.client.detail(shared, userID)
		if detailErr == nil && record != nil {
			if encoded, encErr := json.Marshal(record); encErr == nil {
				d.logCacheError(ctx, "set", d.rdb.Set(shared, key, encoded, d.ttl).Err())
			}
		}
		return record, detailErr
	})
	record, _ := v.(Record)
	if err != nil || record == nil {
		return nil, false
	}
	return record, true
}

// FindUserIDsByName implements Directory. Name searches are not cached.
func (d *CachedDirectory) FindUserIDsByName(ctx context.Context, name, role string) []string {
	return d.client.FindUserIDsByName(ctx, name, role)
}

func (d *CachedDirectory) logCacheError(ctx context.Context, op string, err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	d.log.WithContext(ctx).ExternalCall("redis", "identity_cache_"+op, 0, err)
}
