// Package kyc answers whether a borrower passed identity verification.
package kyc

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const verifiedSet = "kyc:verified"

type RedisVerifier struct {
	rdb *redis.Client
}

func NewRedisVerifier(rdb *redis.Client) *RedisVerifier {
	return &RedisVerifier{rdb: rdb}
}

func (v *RedisVerifier) IsVerified(ctx context.Context, borrowerID string) (bool, error) {
	return v.rdb.SIsMember(ctx, verifiedSet, borrowerID).Result()
}

func (v *RedisVerifier) MarkVerified(ctx context.Context, borrowerID string) error {
	return v.rdb.SAdd(ctx, verifiedSet, borrowerID).Err()
}

func (v *RedisVerifier) Revoke(ctx context.Context, borrowerID string) error {
	return v.rdb.SRem(ctx, verifiedSet, borrowerID).Err()
}
