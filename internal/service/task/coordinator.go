package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ashwinyue/quiz-ai/internal/service/quiz"
)

// 协调错误
var (
	// ErrAlreadyInProgress 同一测验已有任务在执行
	ErrAlreadyInProgress = errors.New("generation already in progress")
	// ErrProgressNotFound 进度记录不存在或已过期
	ErrProgressNotFound = errors.New("progress not found")
)

// Pipeline 出题流水线，由 quiz.Service 实现。
// 拆成四个阶段以便协调器在阶段边界上报进度里程碑。
type Pipeline interface {
	Validate(ctx context.Context, req *quiz.GenerateRequest, userID string) error
	BuildContext(ctx context.Context, quizID, prompt string) (contextText string, degraded bool, err error)
	Generate(ctx context.Context, contextText string, req *quiz.GenerateRequest) (*quiz.QuizOutput, error)
	Save(ctx context.Context, quizID string, out *quiz.QuizOutput) (int, error)
}

// lockKey 生成任务锁 key
func lockKey(quizID string) string {
	return fmt.Sprintf("quiz:generate:lock:%s", quizID)
}

// Coordinator 后台出题任务协调器。
// Submit 校验并取锁后立即返回，实际生成在后台 goroutine 中执行，
// 调用方通过 GetProgress 轮询进度。
type Coordinator struct {
	pipeline Pipeline
	locker   Locker
	progress ProgressStore
	lockTTL  time.Duration

	wg sync.WaitGroup
}

// NewCoordinator 创建任务协调器
func NewCoordinator(pipeline Pipeline, locker Locker, progress ProgressStore, lockTTL time.Duration) *Coordinator {
	return &Coordinator{
		pipeline: pipeline,
		locker:   locker,
		progress: progress,
		lockTTL:  lockTTL,
	}
}

// Submit 提交出题任务。
// 先做快速校验再取锁，无效请求不占用任务槽位；
// 取不到锁返回 ErrAlreadyInProgress。成功后任务在后台执行。
func (c *Coordinator) Submit(ctx context.Context, req *quiz.GenerateRequest, userID string) error {
	if err := c.pipeline.Validate(ctx, req, userID); err != nil {
		return err
	}

	token, acquired, err := c.locker.TryAcquire(ctx, lockKey(req.QuizID), c.lockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrAlreadyInProgress
	}

	c.setProgress(ctx, &Progress{
		QuizID:  req.QuizID,
		Status:  StatusPending,
		Percent: 0,
		Message: "task accepted",
	})

	c.wg.Add(1)
	go c.run(req, token)

	return nil
}

// GetProgress 查询任务进度
func (c *Coordinator) GetProgress(ctx context.Context, quizID string) (*Progress, error) {
	p, err := c.progress.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProgressNotFound
	}
	return p, nil
}

// Wait 等待所有后台任务结束，用于优雅停机
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// run 后台执行出题流水线。
// 不挂在请求 context 上：HTTP 请求返回后任务继续执行。
// 锁超时后自动失效是已接受的取舍，极端慢任务可能与新任务并发，
// 但落库事务保证不会产生半成品数据。
func (c *Coordinator) run(req *quiz.GenerateRequest, token string) {
	ctx := context.Background()

	defer c.wg.Done()
	defer func() {
		if err := c.locker.Release(ctx, lockKey(req.QuizID), token); err != nil {
			log.Printf("Warning: release lock for quiz %s: %v", req.QuizID, err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error: generation panic for quiz %s: %v", req.QuizID, r)
			c.fail(ctx, req.QuizID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	// 阶段一：加载语料并检索上下文
	c.setProgress(ctx, &Progress{
		QuizID:  req.QuizID,
		Status:  StatusProcessing,
		Percent: 20,
		Message: "building lesson context",
	})

	contextText, degraded, err := c.pipeline.BuildContext(ctx, req.QuizID, req.Prompt)
	if err != nil {
		c.fail(ctx, req.QuizID, fmt.Sprintf("build context: %v", err))
		return
	}
	if degraded {
		log.Printf("Warning: quiz %s generated with lexical-only retrieval", req.QuizID)
	}

	// 阶段二：调用 LLM 生成题目
	c.setProgress(ctx, &Progress{
		QuizID:   req.QuizID,
		Status:   StatusProcessing,
		Percent:  40,
		Message:  "generating questions",
		Degraded: degraded,
	})

	out, err := c.pipeline.Generate(ctx, contextText, req)
	if err != nil {
		msg := fmt.Sprintf("generate questions: %v", err)
		if quiz.IsTruncated(err) {
			msg = "model output was truncated, try fewer questions"
		}
		c.fail(ctx, req.QuizID, msg)
		return
	}

	// 阶段三：落库
	c.setProgress(ctx, &Progress{
		QuizID:   req.QuizID,
		Status:   StatusProcessing,
		Percent:  80,
		Message:  "saving questions",
		Degraded: degraded,
	})

	total, err := c.pipeline.Save(ctx, req.QuizID, out)
	if err != nil {
		c.fail(ctx, req.QuizID, fmt.Sprintf("save questions: %v", err))
		return
	}

	c.setProgress(ctx, &Progress{
		QuizID:         req.QuizID,
		Status:         StatusCompleted,
		Percent:        100,
		Message:        "completed",
		TotalQuestions: total,
		Degraded:       degraded,
	})
}

// fail 写入失败终态
func (c *Coordinator) fail(ctx context.Context, quizID, reason string) {
	log.Printf("Error: quiz %s generation failed: %s", quizID, reason)
	c.setProgress(ctx, &Progress{
		QuizID:  quizID,
		Status:  StatusFailed,
		Percent: 0,
		Message: "failed",
		Error:   reason,
	})
}

// setProgress 写入进度，写失败只记日志不中断任务
func (c *Coordinator) setProgress(ctx context.Context, p *Progress) {
	p.UpdatedAt = time.Now()
	if err := c.progress.Set(ctx, p.QuizID, p); err != nil {
		log.Printf("Warning: set progress for quiz %s: %v", p.QuizID, err)
	}
}
