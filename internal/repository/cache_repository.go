package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
)

// CacheRepository provides Redis caching for intern schedule reads. A nil
// client degrades every call to a no-op miss.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{client: client, logger: logger}
}

func scheduleKey(internID string) string {
	return "rotation:schedule:" + internID
}

// GetSchedule retrieves and unmarshals one intern's cached schedule payload.
func (r *CacheRepository) GetSchedule(ctx context.Context, internID string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	key := scheduleKey(internID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}

	return nil
}

// SetSchedule marshals and stores one intern's schedule with the given TTL.
func (r *CacheRepository) SetSchedule(ctx context.Context, internID string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	key := scheduleKey(internID)
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Invalidate drops the cached schedule for one intern. Every engine mutation
// for that intern routes through here so reads never serve stale timelines.
func (r *CacheRepository) Invalidate(ctx context.Context, internID string) {
	if r.client == nil {
		return
	}
	key := scheduleKey(internID)
	if err := r.client.Del(ctx, key).Err(); err != nil && r.logger != nil {
		r.logger.Warn("schedule cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
