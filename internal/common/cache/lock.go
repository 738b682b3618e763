package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout 等待锁超时
var ErrLockTimeout = errors.New("lock wait timeout")

// 仅持有者可释放
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 基于 SET NX PX 的分布式互斥锁
type Locker struct {
	rdb   *redis.Client
	ttl   time.Duration // 锁自动过期时间
	wait  time.Duration // 最长等待时间
	retry time.Duration // 重试间隔
}

// NewLocker 创建分布式锁
func NewLocker(rdb *redis.Client, ttl, wait time.Duration) *Locker {
	return &Locker{
		rdb:   rdb,
		ttl:   ttl,
		wait:  wait,
		retry: 25 * time.Millisecond,
	}
}

// Lock 已持有的锁
type Lock struct {
	locker *Locker
	key    string
	token  string
	Waited time.Duration
}

// Acquire 获取锁，在等待时间内重试，超时返回 ErrLockTimeout
func (l *Locker) Acquire(ctx context.Context, key string) (*Lock, error) {
	token := uuid.NewString()
	start := time.Now()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &Lock{locker: l, key: key, token: token, Waited: time.Since(start)}, nil
		}
		if time.Since(start) >= l.wait {
			return nil, ErrLockTimeout
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Release 释放锁，锁已过期或被他人持有时不做任何事
func (lk *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, lk.locker.rdb, []string{lk.key}, lk.token).Err()
}
