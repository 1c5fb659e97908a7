package policy

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// points at a port nothing listens on, and no local cache layer, so every
// cache operation fails with a connection error
func brokenCacheStore(inner Store) *CachedStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	return &CachedStore{
		Inner: inner,
		Data:  cache.New(&cache.Options{Redis: rdb}),
		TTL:   time.Minute,
	}
}

func TestCachedStoreRedisOutage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	inner := NewMemStore()
	seeded := DefaultPolicy(WorkflowPublicChannel)
	assert.NoError(inner.SavePolicy(ctx, seeded))

	s := brokenCacheStore(inner)

	// reads degrade to the inner store instead of surfacing cache errors;
	// substituting defaults here would drop admin blocklists
	p, err := s.GetPolicy(ctx, WorkflowPublicChannel)
	assert.NoError(err)
	if assert.NotNil(p) {
		assert.Equal(seeded.Workflow, p.Workflow)
		assert.Equal(len(seeded.Tiers), len(p.Tiers))
	}

	// unknown workflow still signals (nil, nil) through the degraded path
	p, err = s.GetPolicy(ctx, "no-such-workflow")
	assert.NoError(err)
	assert.Nil(p)

	// writes land in the inner store even when invalidation fails
	updated := DefaultPolicy(WorkflowPublicChannel)
	updated.Enabled = false
	assert.NoError(s.SavePolicy(ctx, updated))
	p, err = s.GetPolicy(ctx, WorkflowPublicChannel)
	assert.NoError(err)
	if assert.NotNil(p) {
		assert.False(p.Enabled)
	}
}
