package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), mr.Addr(), "", 0, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewClientRejectsEmptyAddr(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", 0, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestSentEmailCachePagesNewestFirst(t *testing.T) {
	_, client := newTestRedis(t)
	c := NewSentEmailCache(client)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, c.AddSentEmail(ctx, i, base.Add(time.Duration(i)*time.Minute)))
	}

	ids, total, err := c.GetSentEmailIDs(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, []int64{5, 4}, ids)

	ids, _, err = c.GetSentEmailIDs(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	ids, _, err = c.GetSentEmailIDs(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSweepLockIsExclusive(t *testing.T) {
	_, client := newTestRedis(t)
	lock := NewSweepLock(client, time.Minute)
	ctx := context.Background()

	release, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lock.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	release()

	release, ok, err = lock.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}

func TestSweepLockReleaseKeepsForeignLock(t *testing.T) {
	mr, client := newTestRedis(t)
	lock := NewSweepLock(client, time.Minute)
	ctx := context.Background()

	release, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// the lock expired and another sweeper took it over
	mr.FastForward(2 * time.Minute)
	releaseOther, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	defer releaseOther()

	release()
	assert.True(t, mr.Exists(sweepLockKey))
}

func TestSweepLockExtendOnlyWithOwnToken(t *testing.T) {
	mr, client := newTestRedis(t)
	lock := &redisSweepLock{client: client, ttl: time.Minute}
	ctx := context.Background()

	require.NoError(t, mr.Set(sweepLockKey, "mine"))
	mr.SetTTL(sweepLockKey, 5*time.Second)

	held, err := lock.extend(ctx, "mine")
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, time.Minute, mr.TTL(sweepLockKey))

	held, err = lock.extend(ctx, "theirs")
	require.NoError(t, err)
	assert.False(t, held)
}

func TestSweepLockIsRenewedWhileHeld(t *testing.T) {
	mr, client := newTestRedis(t)
	lock := NewSweepLock(client, 150*time.Millisecond)
	ctx := context.Background()

	release, ok, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	// miniredis only expires keys on FastForward; shorten the TTL and wait for a renewal
	mr.SetTTL(sweepLockKey, time.Millisecond)
	assert.Eventually(t, func() bool {
		return mr.TTL(sweepLockKey) > 100*time.Millisecond
	}, time.Second, 10*time.Millisecond)
}
