package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tryout-service/internal/app"
	"tryout-service/internal/domain"
)

// generationTTL bounds how long an eviction marker outlives the document.
const generationTTL = 24 * time.Hour

var errStaleFill = errors.New("tryout changed while loading")

// TryOutCache keeps try-out documents in Redis and falls back to the backing
// store on a miss. Documents are stored as: SET tryout:{id} <json> EX ttl.
// Replace and delete go to the backing store first and then drop the key and
// bump tryout:{id}:gen. A fill only writes if the generation it read before
// loading is still current, so a slow read cannot resurrect an old document.
type TryOutCache struct {
	app.TryOutStore
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
	sf     singleflight.Group
}

func NewTryOutCache(client *redis.Client, store app.TryOutStore, ttl time.Duration, log *zap.Logger) *TryOutCache {
	return &TryOutCache{
		TryOutStore: store,
		client:      client,
		ttl:         ttl,
		log:         log,
	}
}

func (c *TryOutCache) GetTryOut(ctx context.Context, id string) (domain.TryOut, error) {
	if t, ok := c.lookup(ctx, id); ok {
		return t, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if t, ok := c.lookup(ctx, id); ok {
			return t, nil
		}
		gen, genErr := c.generation(ctx, id)
		t, err := c.TryOutStore.GetTryOut(ctx, id)
		if err != nil {
			return domain.TryOut{}, err
		}
		if genErr == nil {
			c.store(ctx, t, gen)
		}
		return t, nil
	})
	if err != nil {
		return domain.TryOut{}, err
	}
	return result.(domain.TryOut), nil
}

func (c *TryOutCache) ReplaceTryOut(ctx context.Context, t domain.TryOut) (domain.TryOut, error) {
	replaced, err := c.TryOutStore.ReplaceTryOut(ctx, t)
	c.evict(ctx, t.ID)
	return replaced, err
}

func (c *TryOutCache) DeleteTryOut(ctx context.Context, id string) error {
	err := c.TryOutStore.DeleteTryOut(ctx, id)
	c.evict(ctx, id)
	return err
}

func (c *TryOutCache) lookup(ctx context.Context, id string) (domain.TryOut, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("redis get failed", zap.String("tryout_id", id), zap.Error(err))
		}
		return domain.TryOut{}, false
	}
	var t domain.TryOut
	if err := json.Unmarshal(raw, &t); err != nil {
		c.log.Warn("discarding corrupt cache entry", zap.String("tryout_id", id), zap.Error(err))
		return domain.TryOut{}, false
	}
	return t, true
}

func (c *TryOutCache) generation(ctx context.Context, id string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.log.Warn("redis get generation failed", zap.String("tryout_id", id), zap.Error(err))
	}
	return gen, err
}

// store is best effort; a failed write only costs a reload later.
func (c *TryOutCache) store(ctx context.Context, t domain.TryOut, gen int64) {
	// Expiration 0 means "keep forever" to Redis, so a non-positive ttl disables caching.
	if c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	genKey := c.genKey(t.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(t.ID), raw, c.ttlWithJitter())
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("skipping stale cache fill", zap.String("tryout_id", t.ID))
	default:
		c.log.Warn("redis set failed", zap.String("tryout_id", t.ID), zap.Error(err))
	}
}

func (c *TryOutCache) evict(ctx context.Context, id string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(id))
		pipe.Expire(ctx, c.genKey(id), generationTTL)
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		c.log.Warn("redis evict failed", zap.String("tryout_id", id), zap.Error(err))
	}
	c.sf.Forget(id)
}

func (c *TryOutCache) key(id string) string {
	return "tryout:" + id
}

func (c *TryOutCache) genKey(id string) string {
	return "tryout:" + id + ":gen"
}

func (c *TryOutCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
