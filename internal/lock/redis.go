package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Default timings for the Redis locker.
const (
	DefaultTTL        = 30 * time.Second
	DefaultRetryDelay = 50 * time.Millisecond
	defaultKeyPrefix  = "swipes:lock:"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisOptions configures a RedisLocker.
type RedisOptions struct {
	Prefix     string
	TTL        time.Duration
	RetryDelay time.Duration
}

// RedisLocker holds locks as expiring Redis keys so several processes can share them.
type RedisLocker struct {
	client     redis.Cmdable
	prefix     string
	ttl        time.Duration
	retryDelay time.Duration
}

// NewRedisLocker creates a locker backed by client.
func NewRedisLocker(client redis.Cmdable, opts RedisOptions) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultKeyPrefix
	}
	return &RedisLocker{
		client:     client,
		prefix:     opts.Prefix,
		ttl:        opts.TTL,
		retryDelay: opts.RetryDelay,
	}
}

// Lock polls SET NX until the key is acquired or ctx is done. The key expires after
// the TTL so a crashed holder cannot block a user forever.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, common.NewTransientError("acquire lock", err)
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		slog.Warn("Failed to release lock", "key", key, "error", err)
	}
}
