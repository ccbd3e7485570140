package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemoryRevoker()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Revoke(ctx, "t1", now.Add(time.Hour)))
	require.NoError(t, m.Revoke(ctx, "t2", now.Add(time.Minute)))

	revoked, err := m.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = m.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(10 * time.Minute)
	revoked, err = m.IsRevoked(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, revoked, "expired tokens no longer need tracking")

	m.Cleanup()
	assert.Len(t, m.revoked, 1)
}

func TestRedisRevoker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	r := NewRedisRevoker(client)

	require.NoError(t, r.Revoke(ctx, "t1", time.Now().Add(time.Hour)))
	// Already expired tokens are not stored at all.
	require.NoError(t, r.Revoke(ctx, "t0", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("revoked-token:t0"))

	revoked, err := r.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = r.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.Close()
	_, err = r.IsRevoked(ctx, "t1")
	assert.Error(t, err)
}
