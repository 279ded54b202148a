package util

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock 基于 Redis SETNX 的互斥锁，用于同一资源上的生成任务串行化
type Lock struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewLock(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Lock {
	return &Lock{rdb: rdb, ttl: ttl, logger: logger}
}

// Acquire tries to take the lock for scope+id.
// Returns a release token when acquired, or "" when someone else holds it.
func (l *Lock) Acquire(ctx context.Context, scope string, id int64) (string, error) {
	key := FormatLockKey(scope, id)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		if l.logger != nil {
			l.logger.Info("Lock already held", zap.String("lock_key", key))
		}
		return "", nil
	}
	return token, nil
}

// Release drops the lock if token still owns it.
func (l *Lock) Release(ctx context.Context, scope string, id int64, token string) {
	if token == "" {
		return
	}
	key := FormatLockKey(scope, id)
	if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil && l.logger != nil {
		l.logger.Warn("Failed to release lock", zap.String("lock_key", key), zap.Error(err))
	}
}

func FormatLockKey(scope string, id int64) string {
	return fmt.Sprintf("lock:%s:%d", scope, id)
}
