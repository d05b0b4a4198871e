package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"gorm.io/gorm"

	"github.com/ashwinyue/quiz-ai/internal/config"
	"github.com/ashwinyue/quiz-ai/internal/model"
	"github.com/ashwinyue/quiz-ai/internal/repository"
	"github.com/ashwinyue/quiz-ai/internal/service/retrieval"
)

// 校验错误，接口层据此映射状态码
var (
	ErrInvalidPrompt    = errors.New("invalid prompt")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrAlreadyGenerated = errors.New("quiz already generated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrEmptyCorpus      = errors.New("lesson has no content")
)

// maxPromptRunes 用户要求的长度上限
const maxPromptRunes = 2000

// GenerateRequest 出题请求
type GenerateRequest struct {
	QuizID        string   `json:"quiz_id"`
	Prompt        string   `json:"prompt" binding:"required"`
	Skills        []string `json:"skills"`
	QuestionCount int      `json:"question_count"`
}

// CorpusProvider 提供课时语料段落
type CorpusProvider interface {
	Passages(ctx context.Context, lessonID string) ([]*schema.Document, error)
}

// Service 出题流水线：校验、构建上下文、生成、落库。
// 各阶段拆开暴露，由任务协调器按进度里程碑逐段驱动。
type Service struct {
	repo      *repository.Repositories
	corpus    CorpusProvider
	embedder  embedding.Embedder
	generator *Generator
	cfg       *config.Config
}

// NewService 创建出题服务
func NewService(repo *repository.Repositories, corpus CorpusProvider, embedder embedding.Embedder, generator *Generator, cfg *config.Config) *Service {
	return &Service{
		repo:      repo,
		corpus:    corpus,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
	}
}

// Validate 提交前的快速校验：请求合法、测验存在且未生成、调用方有权限。
// 在取锁之前执行，无效请求不应占用任务槽位。
func (s *Service) Validate(ctx context.Context, req *GenerateRequest, userID string) error {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return fmt.Errorf("%w: prompt is empty", ErrInvalidPrompt)
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptRunes {
		return fmt.Errorf("%w: prompt exceeds %d characters", ErrInvalidPrompt, maxPromptRunes)
	}
	if req.QuestionCount < 0 || req.QuestionCount > 50 {
		return fmt.Errorf("%w: question_count out of range", ErrInvalidPrompt)
	}

	quiz, err := s.repo.Quiz.GetByID(req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("load quiz: %w", err)
	}
	if quiz.Generated {
		return ErrAlreadyGenerated
	}

	lesson, err := s.repo.Course.GetLessonByID(quiz.LessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("load lesson: %w", err)
	}

	course, err := s.repo.Course.GetByID(lesson.CourseID)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if userID == "" || course.OwnerID != userID {
		return ErrPermissionDenied
	}

	return nil
}

// BuildContext 加载课时语料并做混合检索，返回拼接后的上下文文本。
// degraded 表示语义检索不可用、仅按词法排序。
// 检索索引按任务临时构建，任务结束即丢弃。
func (s *Service) BuildContext(ctx context.Context, quizID, prompt string) (contextText string, degraded bool, err error) {
	quiz, err := s.repo.Quiz.GetByID(quizID)
	if err != nil {
		return "", false, fmt.Errorf("load quiz: %w", err)
	}

	passages, err := s.corpus.Passages(ctx, quiz.LessonID)
	if err != nil {
		return "", false, fmt.Errorf("load corpus: %w", err)
	}
	if len(passages) == 0 {
		return "", false, ErrEmptyCorpus
	}

	hybrid := retrieval.NewHybridRetriever(passages, s.embedder, retrieval.Config{
		RRFK:        s.cfg.Quiz.RRFK,
		CandidatesN: s.cfg.Quiz.CandidatesN,
	})
	result, err := hybrid.Retrieve(ctx, prompt, s.cfg.Quiz.TopK)
	if err != nil {
		return "", false, fmt.Errorf("retrieve context: %w", err)
	}

	var b strings.Builder
	for i, doc := range result.Docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(doc.Content)
	}
	return b.String(), result.Degraded, nil
}

// Generate 调用 LLM 生成题目集合
func (s *Service) Generate(ctx context.Context, contextText string, req *GenerateRequest) (*QuizOutput, error) {
	return s.generator.Generate(ctx, contextText, req.Prompt, req.Skills, req.QuestionCount)
}

// Save 把生成的题目落库并标记测验为已生成，返回题目数量
func (s *Service) Save(ctx context.Context, quizID string, out *QuizOutput) (int, error) {
	questions := make([]*model.Question, 0, len(out.Questions))
	for _, pq := range out.Questions {
		q := &model.Question{
			QuestionText: pq.QuestionText,
			Explanation:  pq.Explanation,
			Point:        pq.Point,
			QuestionType: pq.QuestionType,
		}
		for _, pa := range pq.Answers {
			q.Answers = append(q.Answers, model.Answer{
				AnswerText: pa.AnswerText,
				IsCorrect:  pa.IsCorrect,
			})
		}
		questions = append(questions, q)
	}

	if err := s.repo.Quiz.SaveQuestions(quizID, questions); err != nil {
		return 0, fmt.Errorf("save questions: %w", err)
	}
	return len(questions), nil
}
