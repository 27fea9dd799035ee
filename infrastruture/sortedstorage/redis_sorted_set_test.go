package sortedstorage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSet connects to the Redis named by TEST_REDIS_ADDR and skips the test otherwise.
func newTestSet(t *testing.T) (*RedisSortedSet, string) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	key := fmt.Sprintf("duo-platformer:test:%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = client.Del(context.Background(), key).Err()
		_ = client.Close()
	})
	return NewRedisSortedSet(client), key
}

func TestUpsertMaxKeepsBestScore(t *testing.T) {
	set, key := newTestSet(t)
	ctx := context.Background()

	require.NoError(t, set.UpsertMax(ctx, key, 10, "Ada"))
	require.NoError(t, set.UpsertMax(ctx, key, 4, "Ada"))
	require.NoError(t, set.UpsertMax(ctx, key, 7, "Bob"))

	top, err := set.Top(ctx, key, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Ada", top[0].Member)
	assert.Equal(t, 10.0, top[0].Score)
	assert.Equal(t, "Bob", top[1].Member)

	require.NoError(t, set.UpsertMax(ctx, key, 12, "Bob"))
	top, err = set.Top(ctx, key, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bob", top[0].Member)
}

func TestTrimToTop(t *testing.T) {
	set, key := newTestSet(t)
	ctx := context.Background()

	for n, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, set.UpsertMax(ctx, key, float64(n), name))
	}

	require.NoError(t, set.TrimToTop(ctx, key, 3))
	top, err := set.Top(ctx, key, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"e", "d", "c"}, []string{top[0].Member, top[1].Member, top[2].Member})

	require.NoError(t, set.TrimToTop(ctx, key, 10))
	top, err = set.Top(ctx, key, 10)
	require.NoError(t, err)
	assert.Len(t, top, 3)
}

func TestTopWithNonPositiveLimit(t *testing.T) {
	set := NewRedisSortedSet(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))

	top, err := set.Top(context.Background(), "unused", 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}
