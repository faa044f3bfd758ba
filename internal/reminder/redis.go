package reminder

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "reminder:"

type RedisClaimer struct {
	rdb *redis.Client
}

func NewRedisClaimer(rdb *redis.Client) *RedisClaimer {
	return &RedisClaimer{rdb: rdb}
}

func (c *RedisClaimer) Claim(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return c.rdb.SetNX(ctx, keyPrefix+reference, time.Now().Unix(), ttl).Result()
}

func (c *RedisClaimer) Release(ctx context.Context, reference string) error {
	return c.rdb.Del(ctx, keyPrefix+reference).Err()
}
