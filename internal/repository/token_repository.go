package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo keeps the revocation list of access tokens in Redis.  A revoked
// token's jti is stored until the token would have expired anyway, so the
// list never grows beyond the set of live tokens.
type TokenRepo struct {
	rdb    *redis.Client
	prefix string
}

// NewTokenRepo returns a TokenRepo.  A nil client yields a repo whose
// operations are no-ops, which leaves logout client-side only.
func NewTokenRepo(rdb *redis.Client) *TokenRepo { return &TokenRepo{rdb: rdb, prefix: "revoked:"} }

// Enabled reports whether revocations are persisted.
func (r *TokenRepo) Enabled() bool { return r != nil && r.rdb != nil }

// Revoke marks jti as revoked until exp.
func (r *TokenRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	if !r.Enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.prefix+jti, 1, ttl).Err()
}

// IsRevoked reports whether jti was revoked.  Redis errors are returned so
// callers can decide whether to fail open.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !r.Enabled() || jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
