package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

const (
	// playlistCacheKeyPrefix is the prefix for playlist cache keys in Redis.
	playlistCacheKeyPrefix = "playlist:"
)

// RedisPlaylistCache implements PlaylistCache using Redis as the backing store.
type RedisPlaylistCache struct {
	client *redis.Client
}

// NewRedisPlaylistCache creates a new Redis-backed playlist cache.
func NewRedisPlaylistCache(client *redis.Client) *RedisPlaylistCache {
	return &RedisPlaylistCache{
		client: client,
	}
}

// Get retrieves a playlist detail from Redis.
// Returns nil, nil on cache miss.
func (c *RedisPlaylistCache) Get(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error) {
	data, err := c.client.Get(ctx, buildKey(playlistID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var detail model.PlaylistDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("deserialize playlist: %w", err)
	}
	if detail.Videos == nil {
		detail.Videos = []model.VideoCard{}
	}

	return &detail, nil
}

// Set stores a playlist detail in Redis with the specified TTL.
func (c *RedisPlaylistCache) Set(ctx context.Context, detail *model.PlaylistDetail, ttl time.Duration) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("serialize playlist: %w", err)
	}

	if err := c.client.Set(ctx, buildKey(detail.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a playlist detail from Redis.
func (c *RedisPlaylistCache) Delete(ctx context.Context, playlistID uuid.UUID) error {
	if err := c.client.Del(ctx, buildKey(playlistID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

func buildKey(playlistID uuid.UUID) string {
	return playlistCacheKeyPrefix + playlistID.String()
}

// Compile-time verification that RedisPlaylistCache implements PlaylistCache.
var _ PlaylistCache = (*RedisPlaylistCache)(nil)
