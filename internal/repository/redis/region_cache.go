package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
)

// RegionsKey holds the JSON-encoded region list.
const RegionsKey = "store:regions"

// RegionCache implements repository.RegionCache using Redis.
type RegionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRegionCache creates a new Redis-backed region cache.
func NewRegionCache(client *redis.Client, ttl time.Duration) *RegionCache {
	return &RegionCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached regions. ok is false when nothing is cached.
func (c *RegionCache) Get(ctx context.Context) ([]domain.Region, bool, error) {
	data, err := c.client.Get(ctx, RegionsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get regions: %w", err)
	}

	var regions []domain.Region
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, false, fmt.Errorf("unmarshal regions: %w", err)
	}
	return regions, true, nil
}

// Set stores the region list with the configured TTL.
func (c *RegionCache) Set(ctx context.Context, regions []domain.Region) error {
	data, err := json.Marshal(regions)
	if err != nil {
		return fmt.Errorf("marshal regions: %w", err)
	}

	if err := c.client.Set(ctx, RegionsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set regions: %w", err)
	}
	return nil
}

// Invalidate drops the cached region list.
func (c *RegionCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, RegionsKey).Err(); err != nil {
		return fmt.Errorf("redis del regions: %w", err)
	}
	return nil
}
