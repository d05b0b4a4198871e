package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status 任务状态
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Progress 任务进度记录。
// 整条记录整体写入，读取方永远看到一致的快照。
type Progress struct {
	QuizID         string    `json:"quiz_id"`
	Status         Status    `json:"status"`
	Percent        int       `json:"progress"`
	Message        string    `json:"message"`
	TotalQuestions int       `json:"total_questions,omitempty"`
	Error          string    `json:"error,omitempty"`
	Degraded       bool      `json:"degraded,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProgressStore 进度存储。
// Set 整体覆盖写入并重置 TTL；Get 在记录不存在或已过期时返回 (nil, nil)。
type ProgressStore interface {
	Set(ctx context.Context, quizID string, p *Progress) error
	Get(ctx context.Context, quizID string) (*Progress, error)
}

// RedisProgressStore 基于 Redis 的进度存储，记录带 TTL 自动过期
type RedisProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressStore 创建 Redis 进度存储
func NewRedisProgressStore(client *redis.Client, ttl time.Duration) *RedisProgressStore {
	return &RedisProgressStore{client: client, ttl: ttl}
}

// progressKey 生成进度存储 key
func progressKey(quizID string) string {
	return fmt.Sprintf("quiz:progress:%s", quizID)
}

// Set 实现 ProgressStore.Set
func (s *RedisProgressStore) Set(ctx context.Context, quizID string, p *Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	return s.client.Set(ctx, progressKey(quizID), data, s.ttl).Err()
}

// Get 实现 ProgressStore.Get
func (s *RedisProgressStore) Get(ctx context.Context, quizID string) (*Progress, error) {
	val, err := s.client.Get(ctx, progressKey(quizID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}

	var p Progress
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("unmarshal progress: %w", err)
	}
	return &p, nil
}

// memProgress 进程内进度条目
type memProgress struct {
	progress  Progress
	expiresAt time.Time
}

// MemoryProgressStore 进程内进度存储。
// Redis 不可用时的降级实现，读取时惰性过期。
type MemoryProgressStore struct {
	mu      sync.RWMutex
	entries map[string]memProgress
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryProgressStore 创建进程内进度存储
func NewMemoryProgressStore(ttl time.Duration) *MemoryProgressStore {
	return &MemoryProgressStore{
		entries: make(map[string]memProgress),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set 实现 ProgressStore.Set
func (s *MemoryProgressStore) Set(ctx context.Context, quizID string, p *Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[quizID] = memProgress{progress: *p, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Get 实现 ProgressStore.Get
func (s *MemoryProgressStore) Get(ctx context.Context, quizID string) (*Progress, error) {
	s.mu.RLock()
	entry, ok := s.entries[quizID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, quizID)
		s.mu.Unlock()
		return nil, nil
	}

	p := entry.progress
	return &p, nil
}
