package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notes-marketplace-api/internal/database"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("key not found in cache")

// RedisService provides Redis operations. A nil client turns every call into
// a miss or a no-op so the service runs without Redis.
type RedisService struct {
	client *redis.Client
}

// NewRedisService wraps the shared Redis client
func NewRedisService() *RedisService {
	return &RedisService{client: database.GetRedis()}
}

// NewRedisServiceWith wraps an explicit client
func NewRedisServiceWith(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

// Enabled reports whether a Redis client is configured
func (r *RedisService) Enabled() bool {
	return r != nil && r.client != nil
}

// SetJSON stores a JSON-encoded value
func (r *RedisService) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON loads and decodes a JSON value
func (r *RedisService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if !r.Enabled() {
		return ErrCacheMiss
	}
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete removes keys
func (r *RedisService) Delete(ctx context.Context, keys ...string) error {
	if !r.Enabled() || len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func revokedSessionKey(jti string) string {
	return fmt.Sprintf("admin_session:revoked:%s", jti)
}

// RevokeSession blacklists a session id until it would have expired anyway
func (r *RedisService) RevokeSession(ctx context.Context, jti string, ttl time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedSessionKey(jti), 1, ttl).Err()
}

// IsSessionRevoked reports whether a session id was logged out
func (r *RedisService) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedSessionKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
