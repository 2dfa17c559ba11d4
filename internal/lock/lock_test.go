package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/swipes/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ service.Locker = (*MemoryLocker)(nil)
	_ service.Locker = (*RedisLocker)(nil)
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	var (
		inFlight atomic.Int32
		maxSeen  atomic.Int32
		wg       sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, "user-1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := inFlight.Add(1)
			for {
				prev := maxSeen.Load()
				if n <= prev || maxSeen.CompareAndSwap(prev, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, l.size())
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	releaseA, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	releaseB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	releaseB()
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	l := NewMemoryLocker()

	release, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release() // second release is a no-op
	assert.Zero(t, l.size())

	again, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	again()
}

// Runs against a real server when SWIPES_TEST_REDIS_ADDR is set.
func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("SWIPES_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SWIPES_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()
	require.NoError(t, client.Ping(context.Background()).Err())

	l := NewRedisLocker(client, RedisOptions{Prefix: "swipes-test:" + t.Name() + ":", TTL: 5 * time.Second})

	release, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	again, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)
	again()
}
