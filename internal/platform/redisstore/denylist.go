// Package redisstore provides Redis-backed storage for short-lived
// authentication state, currently the revoked refresh token denylist.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkotenko/adboard/internal/config"
)

const denylistKeyPrefix = "denylist:refresh:"

// TokenDenylist records revoked refresh tokens until they would have
// expired anyway. Logout revokes the presented refresh token; the token
// refresh flow rejects any token found here.
type TokenDenylist struct {
	client *redis.Client
}

// NewClient creates a Redis client from configuration. The caller owns the
// client and should Close it on shutdown.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewTokenDenylist creates a denylist backed by the given Redis client.
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &TokenDenylist{client: client}
}

// Revoke marks a refresh token as revoked, keyed by its JWT ID (jti).
// The entry lives only as long as the token itself would remain valid, so
// the denylist never grows beyond the set of still-live revoked tokens.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; nothing to deny.
		return nil
	}

	if err := d.client.Set(ctx, denylistKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the refresh token with the given JWT ID has
// been revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// Ping verifies connectivity to Redis. Used by startup checks.
func (d *TokenDenylist) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}
