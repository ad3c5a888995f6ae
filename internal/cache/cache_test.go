package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapar/backend/internal/domain"
)

func TestExtractionKeyNormalizesWhitespaceOnly(t *testing.T) {
	a := ExtractionKey("Sold 2  Kurtis\tto Mrs. Sharma")
	b := ExtractionKey("  Sold 2 Kurtis to Mrs. Sharma ")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, ExtractionKey("sold 2 kurtis to mrs. sharma"))
	assert.NotEqual(t, a, ExtractionKey("Sold 3 Kurtis to Mrs. Sharma"))
}

func TestNoopCacheMisses(t *testing.T) {
	var c ExtractionCache = NoopExtractionCache{}
	require.NoError(t, c.Set(context.Background(), "k", &domain.Extraction{Intent: "sale"}, time.Minute))
	got, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func redisAddr(t *testing.T) string {
	addr := os.Getenv("VYAPAR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set VYAPAR_TEST_REDIS_ADDR to run redis integration test")
	}
	return addr
}

func TestRedisExtractionCacheRoundTrip(t *testing.T) {
	client := NewRedisClient(redisAddr(t), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()
	c := NewRedisExtractionCache(client)

	key := ExtractionKey("integration " + time.Now().String())
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := &domain.Extraction{Intent: "sale", Item: "Kurti", Quantity: decimal.NewNullDecimal(decimal.NewFromInt(2))}
	require.NoError(t, c.Set(ctx, key, want, time.Minute))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Kurti", got.Item)
	assert.True(t, got.Quantity.Valid)
}

func TestRedisLockerIsExclusive(t *testing.T) {
	client := NewRedisClient(redisAddr(t), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	l := NewRedisLocker(client, 2*time.Second)
	l.wait = 300 * time.Millisecond
	key := "it-" + time.Now().String()

	release, err := l.Lock(ctx, key)
	require.NoError(t, err)

	_, err = l.Lock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotObtained)

	release()
	release2, err := l.Lock(ctx, key)
	require.NoError(t, err)
	release2()
}

func TestRedisLockerRefreshesWhileHeld(t *testing.T) {
	client := NewRedisClient(redisAddr(t), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	l := NewRedisLocker(client, 400*time.Millisecond)
	l.wait = 200 * time.Millisecond
	key := "it-refresh-" + time.Now().String()

	release, err := l.Lock(ctx, key)
	require.NoError(t, err)

	// well past the TTL: without refresh a second caller would get the lock
	time.Sleep(time.Second)
	_, err = l.Lock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotObtained)

	release()
	release2, err := l.Lock(ctx, key)
	require.NoError(t, err)
	release2()
}
