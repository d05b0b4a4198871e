// Package router 设置 HTTP 路由。
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/quiz-ai/internal/handler"
	"github.com/ashwinyue/quiz-ai/internal/middleware"
	"github.com/ashwinyue/quiz-ai/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
		}

		// System 系统
		system := v1.Group("/system")
		{
			system.GET("/info", h.System.Info)
		}

		// 以下路由要求有效认证
		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(svc))

		// Course 课程
		courses := authed.Group("/courses")
		{
			courses.POST("", h.Course.CreateCourse)
			courses.GET("/:id", h.Course.GetCourse)
			courses.POST("/:id/lessons", h.Course.CreateLesson)
		}

		// Quiz 测验
		quizzes := authed.Group("/quizzes")
		{
			quizzes.POST("", h.Quiz.CreateQuiz)
			quizzes.GET("/:id", h.Quiz.GetQuiz)
			quizzes.POST("/:id/generate", h.Quiz.Generate)
			quizzes.GET("/:id/progress", h.Quiz.Progress)
		}
	}

	return r
}
