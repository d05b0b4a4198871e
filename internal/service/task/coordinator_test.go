package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ashwinyue/quiz-ai/internal/service/quiz"
)

// fakePipeline 可按阶段注入错误的流水线桩
type fakePipeline struct {
	validateErr error
	buildErr    error
	degraded    bool
	generateErr error
	saveErr     error
	questions   int
}

func (f *fakePipeline) Validate(ctx context.Context, req *quiz.GenerateRequest, userID string) error {
	return f.validateErr
}

func (f *fakePipeline) BuildContext(ctx context.Context, quizID, prompt string) (string, bool, error) {
	if f.buildErr != nil {
		return "", false, f.buildErr
	}
	return "nội dung bài học", f.degraded, nil
}

func (f *fakePipeline) Generate(ctx context.Context, contextText string, req *quiz.GenerateRequest) (*quiz.QuizOutput, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	out := &quiz.QuizOutput{}
	for i := 0; i < f.questions; i++ {
		out.Questions = append(out.Questions, quiz.ParsedQuestion{QuestionText: "q"})
	}
	return out, nil
}

func (f *fakePipeline) Save(ctx context.Context, quizID string, out *quiz.QuizOutput) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	return len(out.Questions), nil
}

func newTestCoordinator(p *fakePipeline) (*Coordinator, *MemoryLocker, *MemoryProgressStore) {
	locker := NewMemoryLocker()
	store := NewMemoryProgressStore(24 * time.Hour)
	return NewCoordinator(p, locker, store, time.Hour), locker, store
}

// ========== Coordinator 测试 ==========

func TestCoordinator_SuccessfulRun(t *testing.T) {
	ctx := context.Background()
	c, locker, _ := newTestCoordinator(&fakePipeline{questions: 5})

	req := &quiz.GenerateRequest{QuizID: "q1", Prompt: "tạo 5 câu hỏi"}
	if err := c.Submit(ctx, req, "teacher-1"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	c.Wait()

	p, err := c.GetProgress(ctx, "q1")
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if p.Status != StatusCompleted {
		t.Errorf("Status = %s, want %s", p.Status, StatusCompleted)
	}
	if p.Percent != 100 {
		t.Errorf("Percent = %d, want 100", p.Percent)
	}
	if p.TotalQuestions != 5 {
		t.Errorf("TotalQuestions = %d, want 5", p.TotalQuestions)
	}

	// 任务结束后锁应已释放
	if _, ok, _ := locker.TryAcquire(ctx, lockKey("q1"), time.Hour); !ok {
		t.Error("lock still held after completed run")
	}
}

func TestCoordinator_ValidateFailureWritesNoProgress(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("prompt is empty")
	c, locker, _ := newTestCoordinator(&fakePipeline{validateErr: wantErr})

	err := c.Submit(ctx, &quiz.GenerateRequest{QuizID: "q1"}, "teacher-1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Submit() error = %v, want %v", err, wantErr)
	}

	// 校验失败不取锁、不写进度
	if _, err := c.GetProgress(ctx, "q1"); !errors.Is(err, ErrProgressNotFound) {
		t.Errorf("GetProgress() error = %v, want ErrProgressNotFound", err)
	}
	if _, ok, _ := locker.TryAcquire(ctx, lockKey("q1"), time.Hour); !ok {
		t.Error("lock held after validate failure")
	}
}

func TestCoordinator_AlreadyInProgress(t *testing.T) {
	ctx := context.Background()
	c, locker, _ := newTestCoordinator(&fakePipeline{questions: 1})

	// 模拟另一个实例持有锁
	if _, ok, _ := locker.TryAcquire(ctx, lockKey("q1"), time.Hour); !ok {
		t.Fatal("setup acquire failed")
	}

	err := c.Submit(ctx, &quiz.GenerateRequest{QuizID: "q1", Prompt: "p"}, "teacher-1")
	if !errors.Is(err, ErrAlreadyInProgress) {
		t.Errorf("Submit() error = %v, want ErrAlreadyInProgress", err)
	}
}

func TestCoordinator_BuildContextFailure(t *testing.T) {
	ctx := context.Background()
	c, locker, _ := newTestCoordinator(&fakePipeline{buildErr: errors.New("lesson has no content")})

	if err := c.Submit(ctx, &quiz.GenerateRequest{QuizID: "q1", Prompt: "p"}, "teacher-1"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	c.Wait()

	p, _ := c.GetProgress(ctx, "q1")
	if p.Status != StatusFailed {
		t.Errorf("Status = %s, want %s", p.Status, StatusFailed)
	}
	if p.Error == "" {
		t.Error("Error is empty, want failure reason")
	}
	if _, ok, _ := locker.TryAcquire(ctx, lockKey("q1"), time.Hour); !ok {
		t.Error("lock still held after failed run")
	}
}

func TestCoordinator_TruncatedOutputMessage(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(&fakePipeline{
		generateErr: &quiz.ParseError{Kind: quiz.FailureTruncated, Err: errors.New("unexpected end")},
	})

	c.Submit(ctx, &quiz.GenerateRequest{QuizID: "q1", Prompt: "p"}, "teacher-1")
	c.Wait()

	p, _ := c.GetProgress(ctx, "q1")
	if p.Status != StatusFailed {
		t.Fatalf("Status = %s, want %s", p.Status, StatusFailed)
	}
	if !strings.Contains(p.Error, "truncated") {
		t.Errorf("Error = %q, want truncation hint", p.Error)
	}
}

func TestCoordinator_SaveFailureEndsFailed(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(&fakePipeline{questions: 3, saveErr: errors.New("connection reset")})

	c.Submit(ctx, &quiz.GenerateRequest{QuizID: "q1", Prompt: "p"}, "teacher-1")
	c.Wait()

	p, _ := c.GetProgress(ctx, "q1")
	if p.Status != StatusFailed {
		t.Errorf("Status = %s, want %s (persistence failure must not complete)", p.Status, StatusFailed)
	}
	if p.TotalQuestions != 0 {
		t.Errorf("TotalQuestions = %d, want 0", p.TotalQuestions)
	}
}

func TestCoordinator_DegradedFlagPropagates(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(&fakePipeline{questions: 2, degraded: true})

	c.Submit(ctx, &quiz.GenerateRequest{QuizID: "q1", Prompt: "p"}, "teacher-1")
	c.Wait()

	p, _ := c.GetProgress(ctx, "q1")
	if p.Status != StatusCompleted {
		t.Fatalf("Status = %s, want %s", p.Status, StatusCompleted)
	}
	if !p.Degraded {
		t.Error("Degraded = false, want true")
	}
}

func TestCoordinator_ProgressNotFound(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(&fakePipeline{})

	if _, err := c.GetProgress(ctx, "nope"); !errors.Is(err, ErrProgressNotFound) {
		t.Errorf("GetProgress() error = %v, want ErrProgressNotFound", err)
	}
}
