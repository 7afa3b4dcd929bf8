package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Ping(ctx context.Context) error
	SetSessionStatus(ctx context.Context, sessionID uuid.UUID, status models.SessionStatus, ttl time.Duration) error
	GetSessionStatus(ctx context.Context, sessionID uuid.UUID) (models.SessionStatus, bool, error)
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) SetSessionStatus(ctx context.Context, sessionID uuid.UUID, status models.SessionStatus, ttl time.Duration) error {
	return c.client.Set(ctx, SessionStatusKey(sessionID), string(status), ttl).Err()
}

func (c *RedisCache) GetSessionStatus(ctx context.Context, sessionID uuid.UUID) (models.SessionStatus, bool, error) {
	val, err := c.client.Get(ctx, SessionStatusKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return models.SessionStatus(val), true, nil
}

// IncrWithExpiry counts a hit in a fixed window. The expiry is set only when
// the window opens, so later hits never extend it.
func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
