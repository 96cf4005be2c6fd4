package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// GetOrLoadJSON load 返回 (nil, nil) 时不缓存，直接返回 nil
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if v == nil {
			// 不做负缓存：新建记录需立即可见
			return nil, ErrSkip
		}
		return json.Marshal(v)
	})
	if errors.Is(err, ErrSkip) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}
