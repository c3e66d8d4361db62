package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker keeps a denylist of token ids in Redis until the tokens expire.
// A nil *Revoker or one without a client accepts every token.
type Revoker struct {
	RDB    *redis.Client
	Prefix string
}

func NewRevoker(rdb *redis.Client) *Revoker {
	return &Revoker{RDB: rdb, Prefix: "jwt:revoked:"}
}

func (r *Revoker) enabled() bool { return r != nil && r.RDB != nil }

func (r *Revoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if !r.enabled() || jti == "" || ttl <= 0 {
		return nil
	}
	return r.RDB.Set(ctx, r.Prefix+jti, 1, ttl).Err()
}

func (r *Revoker) Revoked(ctx context.Context, jti string) (bool, error) {
	if !r.enabled() || jti == "" {
		return false, nil
	}
	err := r.RDB.Get(ctx, r.Prefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
