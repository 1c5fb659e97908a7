package policy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// CachedStore wraps a Store with a redis-backed read cache (plus a small
// in-process TinyLFU layer). Policies are read on every moderation call, so
// the hot path should not hit the database; the TTL bounds how stale a
// blocklist can be after an admin update on another node. Saves write through
// and invalidate.
type CachedStore struct {
	Inner Store
	Data  *cache.Cache
	TTL   time.Duration
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(inner Store, redisURL string, ttl time.Duration) (*CachedStore, error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(10_000, ttl),
	})
	return &CachedStore{
		Inner: inner,
		Data:  data,
		TTL:   ttl,
	}, nil
}

func policyCacheKey(workflow string) string {
	return "policy/" + workflow
}

func (s *CachedStore) GetPolicy(ctx context.Context, workflow string) (*Policy, error) {
	var raw string
	err := s.Data.Get(ctx, policyCacheKey(workflow), &raw)
	if err == nil && raw != "" {
		var p Policy
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		// corrupt cache entry; fall through to the inner store
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		// cache outage degrades to a direct read; policies must stay
		// available when redis is down
		slog.Warn("policy cache read failed", "workflow", workflow, "err", err)
	}

	p, err := s.Inner.GetPolicy(ctx, workflow)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if err := s.Data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   policyCacheKey(workflow),
		Value: string(b),
		TTL:   s.TTL,
	}); err != nil {
		// the read already succeeded; a failed cache fill is not an error
		slog.Warn("policy cache write failed", "workflow", workflow, "err", err)
	}
	return p, nil
}

func (s *CachedStore) SavePolicy(ctx context.Context, p *Policy) error {
	if err := s.Inner.SavePolicy(ctx, p); err != nil {
		return err
	}
	err := s.Data.Delete(ctx, policyCacheKey(p.Workflow))
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		// invalidation failure leaves a stale entry at worst, bounded by TTL
		slog.Warn("policy cache invalidation failed", "workflow", p.Workflow, "err", err)
	}
	return nil
}

func (s *CachedStore) ListPolicies(ctx context.Context) ([]*Policy, error) {
	return s.Inner.ListPolicies(ctx)
}
