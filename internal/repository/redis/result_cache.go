package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homeMatch/business/recommend"
	"homeMatch/domain"

	"github.com/redis/go-redis/v9"
)

type ResultCache struct {
	client *redis.Client
}

var _ recommend.ResultCache = (*ResultCache)(nil)

func NewResultCache(client *redis.Client) *ResultCache {
	return &ResultCache{
		client: client,
	}
}

func cacheKey(fingerprint string) string {
	return fmt.Sprintf("reco:result:%s", fingerprint)
}

func (c *ResultCache) Get(ctx context.Context, key string) (*domain.RecommendationResult, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(key)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}

	var result domain.RecommendationResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	return &result, true, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, result domain.RecommendationResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result in Redis: %w", err)
	}

	return nil
}
