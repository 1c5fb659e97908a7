package usage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisUsagePrefix string = "usage/"

type RedisTracker struct {
	Client *redis.Client
}

var _ Tracker = (*RedisTracker)(nil)

func NewRedisTracker(redisURL string) (*RedisTracker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisTracker{
		Client: rdb,
	}, nil
}

func (t *RedisTracker) RecordCall(ctx context.Context, provider, operation string, ok bool) error {

	outcome := outcomeOf(ok)
	var key string

	// increment multiple counters in a single redis round-trip
	multi := t.Client.Pipeline()

	key = redisUsagePrefix + periodBucket(provider, operation, outcome, PeriodHour)
	multi.Incr(ctx, key)
	multi.Expire(ctx, key, 2*time.Hour)

	key = redisUsagePrefix + periodBucket(provider, operation, outcome, PeriodDay)
	multi.Incr(ctx, key)
	multi.Expire(ctx, key, 48*time.Hour)

	key = redisUsagePrefix + periodBucket(provider, operation, outcome, PeriodTotal)
	multi.Incr(ctx, key)
	// no expiration for total

	_, err := multi.Exec(ctx)
	return err
}

func (t *RedisTracker) GetCount(ctx context.Context, provider, operation, outcome, period string) (int, error) {
	key := redisUsagePrefix + periodBucket(provider, operation, outcome, period)
	c, err := t.Client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}
