package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sales_visits_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedDirectory(t *testing.T, url string) (*CachedDirectory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	client := NewClient(testConfig{url: url}, logger.Nop())
	return NewCachedDirectory(client, rdb, time.Minute, logger.Nop()), mr
}

func TestCachedExistsServesPositiveHitsFromRedis(t *testing.T) {
	var hits int32
	srv := newIdentityServer(t, &hits)
	dir, mr := newCachedDirectory(t, srv.URL)
	ctx := context.Background()

	assert.True(t, dir.Exists(ctx, knownID))
	assert.True(t, dir.Exists(ctx, knownID))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	ttl := mr.TTL(cacheKeyPrefix + "exists:" + knownID)
	assert.Equal(t, time.Minute, ttl)
}

func TestCachedExistsDoesNotCacheMisses(t *testing.T) {
	var hits int32
	srv := newIdentityServer(t, &hits)
	dir, mr := newCachedDirectory(t, srv.URL)
	ctx := context.Background()

	assert.False(t, dir.Exists(ctx, unknownID))
	assert.False(t, dir.Exists(ctx, unknownID))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.False(t, mr.Exists(cacheKeyPrefix+"exists:"+unknownID))
}

func TestCachedFetchDetail(t *testing.T) {
	var hits int32
	srv := newIdentityServer(t, &hits)
	dir, _ := newCachedDirectory(t, srv.URL)
	ctx := context.Background()

	first, ok := dir.FetchDetail(ctx, knownID)
	require.True(t, ok)
	second, ok := dir.FetchDetail(ctx, knownID)
	require.True(t, ok)

	assert.Equal(t, first.Name(), second.Name())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestCachedExistsFallsBackWhenRedisIsDown(t *testing.T) {
	srv := newIdentityServer(t, nil)
	dir, mr := newCachedDirectory(t, srv.URL)
	mr.Close()

	assert.True(t, dir.Exists(context.Background(), knownID))
	assert.False(t, dir.Exists(context.Background(), unknownID))
}

func TestCachedExistsSharedLookupSurvivesCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	dir, _ := newCachedDirectory(t, srv.URL)

	firstCtx, cancel := context.WithCancel(context.Background())
	results := make(chan bool, 2)
	go func() { results <- dir.Exists(firstCtx, knownID) }()
	<-started
	go func() { results <- dir.Exists(context.Background(), knownID) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)

	assert.True(t, <-results)
	assert.True(t, <-results)
}
