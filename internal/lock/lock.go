// Package lock serializes mutations that must not interleave, keyed by
// the aggregate they touch (reservation, shift, room). With Redis
// configured the lock is held cluster-wide; otherwise a keyed in-process
// mutex covers the single-node deployment.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("lock: not acquired")

const (
	redisTTL       = 30 * time.Second
	acquireBackoff = 25 * time.Millisecond
)

type Locker struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

func New(client *redis.Client) *Locker {
	return &Locker{
		client: client,
		local:  make(map[string]*sync.Mutex),
	}
}

// WithLock runs fn while holding the lock for key, waiting until the
// context expires if the lock is contended.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if l.client == nil {
		return l.withLocalLock(ctx, key, fn)
	}
	return l.withRedisLock(ctx, key, fn)
}

func (l *Locker) withLocalLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.local[key]
	if !ok {
		m = &sync.Mutex{}
		l.local[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (l *Locker) withRedisLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	redisKey := "lock:" + key

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, redisTTL).Result()
		if err != nil {
			return err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ErrNotAcquired, ctx.Err())
		case <-time.After(acquireBackoff):
		}
	}

	defer l.release(redisKey, token)
	return fn(ctx)
}

// release deletes the key only if this holder still owns it; an expired
// lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
