package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"vyapar/backend/internal/domain"
)

func NewRedisClient(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type RedisExtractionCache struct {
	client *redis.Client
}

func NewRedisExtractionCache(client *redis.Client) *RedisExtractionCache {
	return &RedisExtractionCache{client: client}
}

func (c *RedisExtractionCache) Get(ctx context.Context, key string) (*domain.Extraction, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ext domain.Extraction
	if err := json.Unmarshal([]byte(val), &ext); err != nil {
		return nil, false, err
	}
	return &ext, true, nil
}

func (c *RedisExtractionCache) Set(ctx context.Context, key string, value *domain.Extraction, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
