package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList 记录已登出的 token（按 jti），保留到 token 过期为止
type RevocationList struct {
	rdb *redis.Client
}

func NewRevocationList(rdb *redis.Client) *RevocationList {
	return &RevocationList{rdb: rdb}
}

func (l *RevocationList) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return l.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}
