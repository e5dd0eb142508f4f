// Package coordination elects a single replica for periodic jobs.
package coordination

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LeaderLock is a Redis lease that one replica holds for at most ttl
type LeaderLock struct {
	client redis.Cmdable
	key    string
	token  string
	ttl    time.Duration
	logger *slog.Logger
}

func NewLeaderLock(client redis.Cmdable, key, token string, ttl time.Duration, logger *slog.Logger) *LeaderLock {
	return &LeaderLock{
		client: client,
		key:    key,
		token:  token,
		ttl:    ttl,
		logger: logger,
	}
}

// TryAcquire returns true when this replica took the lease
func (l *LeaderLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire leader lock %s: %w", l.key, err)
	}
	if !ok {
		l.logger.Debug("Leader lock held elsewhere", "key", l.key)
	}
	return ok, nil
}

// Release gives the lease up if this replica still holds it
func (l *LeaderLock) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release leader lock %s: %w", l.key, err)
	}
	if deleted == 0 {
		l.logger.Warn("Leader lock expired before release", "key", l.key)
	}
	return nil
}
