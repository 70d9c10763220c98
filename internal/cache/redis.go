// Package cache provides the refresh lock shared by replicas.
package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock. Each locker instance has its own token, so a replica
// never releases a lock another replica holds.
type RedisLocker struct {
	Client *redis.Client
	ttl    time.Duration
	token  string
}

// NewRedisLocker connects to Redis. The lock expires after ttl if never released.
func NewRedisLocker(opt *redis.Options, ttl time.Duration) *RedisLocker {
	return NewRedisLockerWithClient(redis.NewClient(opt), ttl)
}

// NewRedisLockerWithClient wraps an existing client
func NewRedisLockerWithClient(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{Client: client, ttl: ttl, token: newToken()}
}

// Ping checks connectivity
func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.Client.Ping(ctx).Err()
}

// TryLock takes key if nobody holds it
func (l *RedisLocker) TryLock(ctx context.Context, key string) (bool, error) {
	ok, err := l.Client.SetNX(ctx, key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Unlock releases key if this locker still owns it
func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.Client, []string{key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the client
func (l *RedisLocker) Close() error {
	return l.Client.Close()
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
