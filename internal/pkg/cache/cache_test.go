package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type board struct {
	Names []string `json:"names"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", board{Names: []string{"a", "b"}}, time.Minute))

	var got board
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got.Names)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", board{}, 30*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	var got board
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", board{}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got board
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_NonPositiveTTLRemoves(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", board{Names: []string{"a"}}, time.Minute))
	require.NoError(t, c.Set(ctx, "k", board{Names: []string{"b"}}, 0))

	var got board
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.items.ItemCount())
}

func TestMemoryCache_ReadersGetCopies(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	stored := board{Names: []string{"a"}}
	require.NoError(t, c.Set(ctx, "k", stored, time.Minute))
	stored.Names[0] = "changed"

	var first board
	_, err := c.Get(ctx, "k", &first)
	require.NoError(t, err)
	first.Names[0] = "mutated"

	var second board
	ok, err := c.Get(ctx, "k", &second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, second.Names)
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	c := NewRedisCache(rdb, "test-cache")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", board{Names: []string{"x"}}, time.Minute))
	var got board
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, got.Names)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
