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
)

// CourseHandler 课程处理器
type CourseHandler struct {
	repo *repository.Repositories
}

// NewCourseHandler 创建课程处理器
func NewCourseHandler(svc *service.Services) *CourseHandler {
	return &CourseHandler{repo: svc.Repos}
}

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	course := &model.Course{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	}
	if err := h.repo.Course.Create(course); err != nil {
		Error(c, err)
		return
	}

	Created(c, course)
}

// GetCourse 获取课程及其课时
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")

	course, err := h.repo.Course.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "course not found")
			return
		}
		Error(c, err)
		return
	}

	lessons, err := h.repo.Course.ListLessons(id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{
		"course":  course,
		"lessons": lessons,
	})
}

// CreateLessonRequest 创建课时请求
type CreateLessonRequest struct {
	Title        string `json:"title" binding:"required"`
	DocumentPath string `json:"document_path"`
}

// CreateLesson 创建课时
// POST /api/v1/courses/:id/lessons
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	var req CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	courseID := c.Param("id")
	course, err := h.repo.Course.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "course not found")
			return
		}
		Error(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	if course.OwnerID != userID {
		Forbidden(c, "not the course owner")
		return
	}

	lesson := &model.Lesson{
		ID:           uuid.New().String(),
		CourseID:     courseID,
		Title:        req.Title,
		DocumentPath: req.DocumentPath,
	}
	if err := h.repo.Course.CreateLesson(lesson); err != nil {
		Error(c, err)
		return
	}

	Created(c, lesson)
}
