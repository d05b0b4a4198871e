// Package service 聚合各业务服务并负责 AI 组件的装配。
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino-ext/components/embedding/dashscope"
	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/quiz-ai/internal/config"
	"github.com/ashwinyue/quiz-ai/internal/repository"
	"github.com/ashwinyue/quiz-ai/internal/service/auth"
	"github.com/ashwinyue/quiz-ai/internal/service/document"
	"github.com/ashwinyue/quiz-ai/internal/service/quiz"
	"github.com/ashwinyue/quiz-ai/internal/service/task"
)

// Services 业务服务集合
type Services struct {
	Auth *auth.Service
	Quiz *quiz.Service
	Task *task.Coordinator

	Repos    *repository.Repositories
	Config   *config.Config
	Embedder embedding.Embedder
}

// NewServices 创建所有服务。
// redisClient 为 nil 时任务锁与进度存储降级为进程内实现，
// 单实例部署下语义不变，多实例部署必须配置 Redis。
func NewServices(repos *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	ctx := context.Background()

	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	embedder := newEmbedder(ctx, cfg)

	corpus := document.NewLoader(repos, cfg)
	generator := quiz.NewGenerator(chatModel, cfg.Quiz.MaxOutputTokens)
	quizService := quiz.NewService(repos, corpus, embedder, generator, cfg)

	var locker task.Locker
	var progress task.ProgressStore
	if redisClient != nil {
		locker = task.NewRedisLocker(redisClient)
		progress = task.NewRedisProgressStore(redisClient, cfg.Quiz.ProgressTTL())
	} else {
		log.Printf("Warning: redis not available, using in-process lock and progress store")
		locker = task.NewMemoryLocker()
		progress = task.NewMemoryProgressStore(cfg.Quiz.ProgressTTL())
	}
	coordinator := task.NewCoordinator(quizService, locker, progress, cfg.Quiz.LockTTL())

	return &Services{
		Auth:     auth.NewService(repos, cfg),
		Quiz:     quizService,
		Task:     coordinator,
		Repos:    repos,
		Config:   cfg,
		Embedder: embedder,
	}, nil
}

// newChatModel 创建 ChatModel
func newChatModel(ctx context.Context, cfg *config.Config) (model.ChatModel, error) {
	aiCfg := cfg.AI

	var apiKey, baseURL, modelName string

	switch aiCfg.Provider {
	case "openai":
		apiKey = aiCfg.OpenAI.APIKey
		baseURL = aiCfg.OpenAI.BaseURL
		modelName = aiCfg.OpenAI.Model
	case "alibaba", "qwen", "dashscope":
		apiKey = aiCfg.Alibaba.AccessKeySecret
		baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
		modelName = aiCfg.Alibaba.Model
	case "deepseek":
		apiKey = aiCfg.DeepSeek.APIKey
		baseURL = aiCfg.DeepSeek.BaseURL
		modelName = aiCfg.DeepSeek.Model
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required for provider: %s", aiCfg.Provider)
	}

	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
	})
}

// newEmbedder 创建 Embedding 器。
// 创建失败返回 nil，检索层会据此降级为纯词法检索。
func newEmbedder(ctx context.Context, cfg *config.Config) embedding.Embedder {
	embCfg := cfg.AI.Embedding

	if embCfg.APIKey == "" {
		log.Printf("Warning: embedding api_key is empty")
		return nil
	}

	switch embCfg.Provider {
	case "alibaba", "qwen", "dashscope", "":
		modelName := embCfg.Model
		if modelName == "" {
			modelName = "text-embedding-v3"
		}

		embConfig := &dashscope.EmbeddingConfig{
			APIKey: embCfg.APIKey,
			Model:  modelName,
		}
		if embCfg.Timeout > 0 {
			embConfig.Timeout = time.Duration(embCfg.Timeout) * time.Second
		}
		if embCfg.Dimensions > 0 {
			embConfig.Dimensions = &embCfg.Dimensions
		}

		embedder, err := dashscope.NewEmbedder(ctx, embConfig)
		if err != nil {
			log.Printf("Warning: failed to create dashscope embedder: %v", err)
			return nil
		}
		return embedder

	case "openai":
		modelName := embCfg.Model
		if modelName == "" {
			modelName = "text-embedding-3-small"
		}

		embConfig := &openaiembed.EmbeddingConfig{
			APIKey:  embCfg.APIKey,
			BaseURL: embCfg.BaseURL,
			Model:   modelName,
		}
		if embCfg.Timeout > 0 {
			embConfig.Timeout = time.Duration(embCfg.Timeout) * time.Second
		}
		if embCfg.Dimensions > 0 {
			embConfig.Dimensions = &embCfg.Dimensions
		}

		embedder, err := openaiembed.NewEmbedder(ctx, embConfig)
		if err != nil {
			log.Printf("Warning: failed to create openai embedder: %v", err)
			return nil
		}
		return embedder

	default:
		log.Printf("Warning: unsupported embedding provider: %s", embCfg.Provider)
		return nil
	}
}
