package repo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"massage-booking-api/internal/core/cache"
	"massage-booking-api/internal/domain"
)

// 比对成功才删除，避免猜错的请求把有效令牌作废
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisResetTokens 令牌哈希存 Redis，靠 TTL 过期
type RedisResetTokens struct {
	c *cache.Cache
}

func NewRedisResetTokens(c *cache.Cache) *RedisResetTokens {
	return &RedisResetTokens{c: c}
}

func (s *RedisResetTokens) key(userID string) string {
	return s.c.Prefix + "pwreset:" + userID
}

func (s *RedisResetTokens) Save(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	return s.c.RDB.Set(ctx, s.key(userID), tokenHash, ttl).Err()
}

func (s *RedisResetTokens) Consume(ctx context.Context, userID, tokenHash string) error {
	n, err := consumeScript.Run(ctx, s.c.RDB, []string{s.key(userID)}, tokenHash).Int()
	if err != nil {
		return err
	}
	if n != 1 {
		return domain.ErrInvalidToken
	}
	return nil
}
