package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaekwang-park/todo-list/internal/model"
)

const keyPrefix = "todos:page:"

// PageCache keeps rendered list pages in Redis until the next write.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient connects and pings, closing the client if Redis is unreachable.
func NewRedisClient(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Get reports a miss with ok=false and a nil error.
func (c *PageCache) Get(ctx context.Context, key string) (model.Page, bool, error) {
	b, err := c.rdb.Get(ctx, pageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Page{}, false, nil
	}
	if err != nil {
		return model.Page{}, false, err
	}

	var page model.Page
	if err := json.Unmarshal(b, &page); err != nil {
		return model.Page{}, false, fmt.Errorf("decode cached page: %w", err)
	}
	return page, true, nil
}

func (c *PageCache) Set(ctx context.Context, key string, page model.Page) error {
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, pageKey(key), b, c.ttl).Err()
}

// Invalidate drops every cached page.
func (c *PageCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func pageKey(key string) string {
	return keyPrefix + key
}
