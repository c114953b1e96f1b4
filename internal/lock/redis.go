package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock key only if it still holds our token, so a
// holder whose TTL expired cannot release a lock someone else re-acquired.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Mutex is a Redis-backed Locker for multi-instance deployments: SET NX with
// a TTL, polled until acquired or the context expires. The TTL bounds how
// long a crashed holder can block other instances.
type Mutex struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewMutex constructs a Mutex with a 30s hold TTL and 50ms retry interval.
func NewMutex(client *redis.Client) *Mutex {
	return &Mutex{client: client, ttl: 30 * time.Second, retry: 50 * time.Millisecond}
}

// Lock acquires the distributed lock for key.
func (m *Mutex) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := "trailhop:lock:" + key
	token := uuid.NewString()

	for {
		ok, err := m.client.SetNX(ctx, redisKey, token, m.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock.Mutex.Lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// Release with a fresh context: the caller's may already be done.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = unlockScript.Run(releaseCtx, m.client, []string{redisKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock.Mutex.Lock %s: %w", key, ctx.Err())
		case <-time.After(m.retry):
		}
	}
}
