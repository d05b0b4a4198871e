package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/quiz-ai/internal/service"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services) *SystemHandler {
	return &SystemHandler{svc: svc}
}

// Info 获取系统信息
// GET /api/v1/system/info
func (h *SystemHandler) Info(c *gin.Context) {
	cfg := h.svc.Config
	Success(c, gin.H{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"ai_provider": cfg.AI.Provider,
		"embedding":   h.svc.Embedder != nil,
	})
}
