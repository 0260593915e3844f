package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient needs a live server; set TEST_REDIS_ADDR to run these tests.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis is not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestReportCacheRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	cache := NewReportCache(client, time.Minute, "test:gen")
	t.Cleanup(func() { client.Del(ctx, "test:gen", "test:stats") })
	require.NoError(t, client.Del(ctx, "test:gen", "test:stats").Err())

	var stats entity.SystemStats
	ok, err := cache.Get(ctx, "test:stats", &stats)
	require.NoError(t, err)
	assert.False(t, ok)

	want := entity.SystemStats{TotalEvents: 3, AverageAttendanceRate: 87.5}
	require.NoError(t, cache.Set(ctx, "test:stats", want))

	ok, err = cache.Get(ctx, "test:stats", &stats)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, stats)
}

func TestPublishMovesGeneration(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	cache := NewReportCache(client, time.Minute, "test:gen")
	t.Cleanup(func() { client.Del(ctx, "test:gen") })
	require.NoError(t, client.Del(ctx, "test:gen").Err())

	gen, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, cache.Publish(ctx, entity.NewNotification(entity.NotificationRegistrationCreated, nil, nil, nil)))
	require.NoError(t, cache.Publish(ctx, entity.NewNotification(entity.NotificationEventFull, nil, nil, nil)))

	gen, err = cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}
