package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Client *redis.Client 的子集，便于测试替换
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const (
	genStripes         = 256
	defaultLoadTimeout = 5 * time.Second
)

type Cache struct {
	RDB Client
	// LoadTimeout 回源上限；回源不跟随单个调用方取消
	LoadTimeout time.Duration

	sf singleflight.Group
	// 按 key 哈希分片的失效代数；回源期间代数变化则不回写
	gens [genStripes]atomic.Uint64
}

func New(addr, pass string, db int) (*Cache, *redis.Client) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	return &Cache{RDB: rdb}, rdb
}

func NewWithClient(c Client) *Cache { return &Cache{RDB: c} }

// ErrSkip 由 load 返回：结果直接透传，不写缓存
var ErrSkip = errors.New("cache: skip")

func (c *Cache) gen(key string) *atomic.Uint64 {
	return &c.gens[xxhash.Sum64String(key)%genStripes]
}

func (c *Cache) loadTimeout() time.Duration {
	if c.LoadTimeout > 0 {
		return c.LoadTimeout
	}
	return defaultLoadTimeout
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	// 先读缓存（redis 不可用时直接回源）
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源；每个调用方只等自己的 ctx
	ch := c.sf.DoChan(key, func() (any, error) {
		g := c.gen(key).Load()
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout())
		defer cancel()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		c.writeBack(lctx, key, b, ttl, g)
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}

// writeBack 回源开始后发生过失效则放弃；Set 与失效交错时补删
func (c *Cache) writeBack(ctx context.Context, key string, b []byte, ttl time.Duration, g uint64) {
	gen := c.gen(key)
	if gen.Load() != g {
		return
	}
	_ = c.RDB.Set(ctx, key, b, ttl).Err()
	if gen.Load() != g {
		_ = c.RDB.Del(ctx, key).Err()
	}
}

// Invalidate 先推进代数并断开进行中的回源，再删 key
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		c.gen(k).Add(1)
		c.sf.Forget(k)
	}
	return c.RDB.Del(ctx, keys...).Err()
}
