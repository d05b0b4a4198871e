// Package task 提供后台出题任务的协调：任务锁、进度存储与执行流水线。
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker 按任务键提供互斥。
// TryAcquire 不阻塞：拿不到锁立即返回 acquired=false。
// Release 只释放自己持有的锁；锁已过期或被他人持有时静默不动作。
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, key, token string) error
}

// releaseScript 比对 token 后删除，保证不误删他人的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 SET NX 的分布式任务锁
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker 创建 Redis 任务锁
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// TryAcquire 尝试取锁，token 为随机持有凭证
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release 释放持有的锁。
// 锁已过期（GET 返回空或 token 不匹配）时不报错，
// 任务跑满 TTL 后锁自动失效属于正常情况。
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

// memLock 进程内锁条目
type memLock struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker 进程内任务锁。
// Redis 不可用时的降级实现，单实例部署下语义与 Redis 版一致。
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memLock
	now  func() time.Time
}

// NewMemoryLocker 创建进程内任务锁
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]memLock),
		now:  time.Now,
	}
}

// TryAcquire 实现 Locker.TryAcquire
func (l *MemoryLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.held[key]; ok && l.now().Before(cur.expiresAt) {
		return "", false, nil
	}

	token := uuid.New().String()
	l.held[key] = memLock{token: token, expiresAt: l.now().Add(ttl)}
	return token, true, nil
}

// Release 实现 Locker.Release
func (l *MemoryLocker) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.held[key]; ok && cur.token == token {
		delete(l.held, key)
	}
	return nil
}
