package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_GivesUpAfterOneTTL(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	holder := NewRedisLocker(rdb, "test-lock", 5*time.Second)
	waiter := NewRedisLocker(rdb, "test-lock", 200*time.Millisecond)

	release, err := holder.Acquire(context.Background(), "emp-1")
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = waiter.Acquire(context.Background(), "emp-1")
	assert.ErrorIs(t, err, ErrNotObtained)
	assert.Less(t, time.Since(start), 2*time.Second)
}
