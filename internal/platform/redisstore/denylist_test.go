package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDenylist(t *testing.T) (*TokenDenylist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewTokenDenylist(client), mr
}

func TestTokenDenylist_RevokeAndCheck(t *testing.T) {
	t.Parallel()

	denylist, _ := newTestDenylist(t)
	ctx := context.Background()

	revoked, err := denylist.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	err = denylist.Revoke(ctx, "token-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	revoked, err = denylist.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Other tokens are unaffected.
	revoked, err = denylist.IsRevoked(ctx, "token-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_EntryExpiresWithToken(t *testing.T) {
	t.Parallel()

	denylist, mr := newTestDenylist(t)
	ctx := context.Background()

	err := denylist.Revoke(ctx, "token-1", time.Now().Add(time.Minute))
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	revoked, err := denylist.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_ExpiredTokenIsNoOp(t *testing.T) {
	t.Parallel()

	denylist, _ := newTestDenylist(t)
	ctx := context.Background()

	err := denylist.Revoke(ctx, "stale", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	revoked, err := denylist.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)
}
