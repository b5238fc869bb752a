package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "r2d2:sweep_lock"

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// extendScript resets the TTL only if the lock still carries our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// SweepLock keeps the ticker, the cron endpoint and the CLI from sweeping at the same time.
type SweepLock interface {
	// TryLock returns a release func, or ok=false when another sweep holds the lock.
	// The lock is renewed until release is called.
	TryLock(ctx context.Context) (release func(), ok bool, err error)
}

type redisSweepLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSweepLock(client *redis.Client, ttl time.Duration) SweepLock {
	return &redisSweepLock{client: client, ttl: ttl}
}

func (l *redisSweepLock) TryLock(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, sweepLockKey, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	bg := context.WithoutCancel(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(bg, token, stop, done)

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(stop)
			<-done
			_ = releaseScript.Run(bg, l.client, []string{sweepLockKey}, token).Err()
		})
	}
	return release, true, nil
}

// keepAlive extends the lock every third of its TTL. It gives up once the token is gone.
func (l *redisSweepLock) keepAlive(ctx context.Context, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := l.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			held, err := l.extend(ctx, token)
			if err == nil && !held {
				return
			}
		}
	}
}

func (l *redisSweepLock) extend(ctx context.Context, token string) (bool, error) {
	n, err := extendScript.Run(ctx, l.client, []string{sweepLockKey}, token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
