package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashwinyue/quiz-ai/internal/middleware"
	"github.com/ashwinyue/quiz-ai/internal/model"
	"github.com/ashwinyue/quiz-ai/internal/repository"
	"github.com/ashwinyue/quiz-ai/internal/service"
	"github.com/ashwinyue/quiz-ai/internal/service/quiz"
	"github.com/ashwinyue/quiz-ai/internal/service/task"
)

// QuizHandler 测验处理器
type QuizHandler struct {
	svc  *service.Services
	repo *repository.Repositories
}

// NewQuizHandler 创建测验处理器
func NewQuizHandler(svc *service.Services) *QuizHandler {
	return &QuizHandler{svc: svc, repo: svc.Repos}
}

// CreateQuizRequest 创建测验请求
type CreateQuizRequest struct {
	LessonID string `json:"lesson_id" binding:"required"`
	Title    string `json:"title" binding:"required"`
}

// CreateQuiz 创建空测验
// POST /api/v1/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	q := &model.Quiz{
		ID:       uuid.New().String(),
		LessonID: req.LessonID,
		Title:    req.Title,
	}
	if err := h.repo.Quiz.Create(q); err != nil {
		Error(c, err)
		return
	}

	Created(c, q)
}

// Generate 提交后台出题任务
// POST /api/v1/quizzes/:id/generate
func (h *QuizHandler) Generate(c *gin.Context) {
	var req quiz.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	req.QuizID = c.Param("id")

	userID, _ := middleware.GetUserID(c)

	if err := h.svc.Task.Submit(c.Request.Context(), &req, userID); err != nil {
		switch {
		case errors.Is(err, quiz.ErrInvalidPrompt):
			BadRequest(c, err.Error())
		case errors.Is(err, quiz.ErrQuizNotFound), errors.Is(err, quiz.ErrLessonNotFound):
			NotFound(c, err.Error())
		case errors.Is(err, quiz.ErrPermissionDenied):
			Forbidden(c, err.Error())
		case errors.Is(err, quiz.ErrAlreadyGenerated), errors.Is(err, task.ErrAlreadyInProgress):
			Conflict(c, err.Error())
		default:
			Error(c, err)
		}
		return
	}

	Accepted(c, gin.H{
		"quiz_id": req.QuizID,
		"status":  task.StatusPending,
	})
}

// Progress 查询出题进度
// GET /api/v1/quizzes/:id/progress
func (h *QuizHandler) Progress(c *gin.Context) {
	p, err := h.svc.Task.GetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, task.ErrProgressNotFound) {
			NotFound(c, "no generation task for this quiz")
			return
		}
		Error(c, err)
		return
	}

	Success(c, p)
}

// GetQuiz 获取测验及其题目
// GET /api/v1/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := c.Param("id")

	q, err := h.repo.Quiz.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "quiz not found")
			return
		}
		Error(c, err)
		return
	}

	questions, err := h.repo.Quiz.ListQuestions(id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{
		"quiz":      q,
		"questions": questions,
	})
}
