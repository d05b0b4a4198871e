// Package handler 提供 HTTP 接口层。
package handler

import (
	"github.com/ashwinyue/quiz-ai/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth   *AuthHandler
	Course *CourseHandler
	Quiz   *QuizHandler
	System *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:   NewAuthHandler(svc),
		Course: NewCourseHandler(svc),
		Quiz:   NewQuizHandler(svc),
		System: NewSystemHandler(svc),
	}
}
