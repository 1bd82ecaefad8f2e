package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces pending keys in a shared Redis.
const DefaultKeyPrefix = "presensi:pending:"

// RedisStore keeps pending requests in Redis so several processes can share
// them and they survive a restart. Expiry uses native key TTLs.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl disables expiry.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to Redis and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

// Add implements Store.
func (r *RedisStore) Add(ctx context.Context, userID string) error {
	if err := r.client.Set(ctx, r.key(userID), "1", r.ttl).Err(); err != nil {
		return fmt.Errorf("pending add: %w", err)
	}
	return nil
}

// Take implements Store. GETDEL makes the read and delete one operation.
func (r *RedisStore) Take(ctx context.Context, userID string) (bool, error) {
	_, err := r.client.GetDel(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pending take: %w", err)
	}
	return true, nil
}

// Contains implements Store.
func (r *RedisStore) Contains(ctx context.Context, userID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("pending contains: %w", err)
	}
	return n > 0, nil
}
