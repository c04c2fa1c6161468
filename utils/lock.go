package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/inout_backend/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrLockNotObtained = errors.New("could not obtain lock")

// KeyLocker provides mutual exclusion per string key.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker serialises callers inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &localLock{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, entry)
		return nil, fmt.Errorf("%w %q: %v", ErrLockNotObtained, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.unref(key, entry)
		})
	}, nil
}

func (l *LocalLocker) unref(key string, entry *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

// RedisLocker shares locks between instances through redislock.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, prefix: "inout:lock:", logger: config.GetLogger()}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(25*time.Millisecond), 400),
	}
	lock, err := l.client.Obtain(ctx, l.prefix+key, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w %q", ErrLockNotObtained, key)
	} else if err != nil {
		return nil, err
	}
	return keepAlive(lock, l.prefix+key, l.ttl, l.logger), nil
}

// heldLock is the part of *redislock.Lock the keep-alive loop needs.
type heldLock interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

// keepAlive refreshes the lock every ttl/2 until the returned release
// func runs. Refresh and release failures are logged; a failed refresh
// means another holder may already own the key.
func keepAlive(lock heldLock, key string, ttl time.Duration, logger *logrus.Logger) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), ttl/2)
				err := lock.Refresh(ctx, ttl, nil)
				cancel()
				if err != nil {
					config.LogError(logger, "KeyLocker", "keepAlive", "refresh lock", key, err)
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := lock.Release(ctx); err != nil {
				config.LogError(logger, "KeyLocker", "release", "release lock", key, err)
			}
		})
	}
}

// NewKeyLocker prefers Redis when a client is available.
func NewKeyLocker(rdb *redis.Client) KeyLocker {
	if rdb == nil {
		return NewLocalLocker()
	}
	return NewRedisLocker(rdb, 30*time.Second)
}
