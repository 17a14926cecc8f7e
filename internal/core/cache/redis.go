package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB    *redis.Client
	Prefix string
	Log    *zap.Logger
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(rdb *redis.Client) *Cache {
	return &Cache{RDB: rdb, Prefix: "massage:", Log: zap.NewNop()}
}

func (c *Cache) key(k string) string { return c.Prefix + k }

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	// 先读缓存；Redis 不可用时直接回源
	if b, err := c.RDB.Get(ctx, c.key(key)).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if err := c.RDB.Set(ctx, c.key(key), b, ttl).Err(); err != nil && c.Log != nil {
			c.Log.Debug("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 写操作后删除相关 key
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.RDB.Del(ctx, full...).Err()
}
