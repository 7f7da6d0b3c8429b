package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tryout-service/internal/app"
	"tryout-service/internal/domain"
)

// TryOutCache wraps a TryOutStore and keeps recently read packages in process
// for ttl. Writes go straight to the backing store and evict the cached copy.
// Every eviction bumps the id's generation; a fill that started under an older
// generation is returned to its caller but never cached.
type TryOutCache struct {
	app.TryOutStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu          sync.RWMutex
	cache       map[string]cachedTryOut
	generations map[string]uint64
}

type cachedTryOut struct {
	tryout    domain.TryOut
	expiresAt time.Time
}

func NewTryOutCache(store app.TryOutStore, ttl time.Duration) *TryOutCache {
	return &TryOutCache{
		TryOutStore: store,
		ttl:         ttl,
		clock:       time.Now,
		cache:       make(map[string]cachedTryOut),
		generations: make(map[string]uint64),
	}
}

func (c *TryOutCache) GetTryOut(ctx context.Context, id string) (domain.TryOut, error) {
	if t, ok := c.lookup(id); ok {
		return t, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if t, ok := c.lookup(id); ok {
			return t, nil
		}
		c.mu.RLock()
		gen := c.generations[id]
		c.mu.RUnlock()

		t, err := c.TryOutStore.GetTryOut(ctx, id)
		if err != nil {
			return domain.TryOut{}, err
		}
		c.fill(t, gen)
		return t, nil
	})
	if err != nil {
		return domain.TryOut{}, err
	}
	return copyTryOut(result.(domain.TryOut)), nil
}

func (c *TryOutCache) ReplaceTryOut(ctx context.Context, t domain.TryOut) (domain.TryOut, error) {
	replaced, err := c.TryOutStore.ReplaceTryOut(ctx, t)
	c.evict(t.ID)
	return replaced, err
}

func (c *TryOutCache) DeleteTryOut(ctx context.Context, id string) error {
	err := c.TryOutStore.DeleteTryOut(ctx, id)
	c.evict(id)
	return err
}

func (c *TryOutCache) lookup(id string) (domain.TryOut, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.TryOut{}, false
	}
	return copyTryOut(entry.tryout), true
}

// fill caches t unless an eviction happened since gen was read.
func (c *TryOutCache) fill(t domain.TryOut, gen uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[t.ID] != gen {
		return
	}
	c.cache[t.ID] = cachedTryOut{tryout: copyTryOut(t), expiresAt: c.clock().Add(c.ttlWithJitter())}
}

func (c *TryOutCache) evict(id string) {
	c.mu.Lock()
	delete(c.cache, id)
	c.generations[id]++
	c.mu.Unlock()
	c.sf.Forget(id)
}

func (c *TryOutCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
