package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ReportCache keeps computed reports as JSON. Report keys are versioned by a
// generation counter; every domain notification increments it, which retires
// all reports stored so far without racing a report that is being computed.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	genKey string
}

func NewReportCache(client *redis.Client, ttl time.Duration, genKey string) *ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
		genKey: genKey,
	}
}

// Generation returns the current counter, 0 before the first mutation.
func (c *ReportCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", c.genKey, err)
	}
	return gen, nil
}

func (c *ReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// битое значение просто пересчитываем
		c.client.Del(ctx, key)
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value until the ttl runs out; stale generations expire the same way.
func (c *ReportCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate moves the generation forward.
func (c *ReportCache) Invalidate(ctx context.Context) (int64, error) {
	return c.client.Incr(ctx, c.genKey).Result()
}

// Publish implements service.Publisher: any committed mutation makes the reports stale.
func (c *ReportCache) Publish(ctx context.Context, n *entity.Notification) error {
	gen, err := c.Invalidate(ctx)
	if err != nil {
		return fmt.Errorf("failed to invalidate reports after %s: %w", n.Type, err)
	}
	logrus.WithFields(logrus.Fields{"type": n.Type, "generation": gen}).Debug("Report cache invalidated")
	return nil
}

func (c *ReportCache) Close() error {
	return c.client.Close()
}
