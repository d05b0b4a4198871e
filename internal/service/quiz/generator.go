package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrGenerationUnavailable LLM 调用失败（网络、鉴权、限流等）
var ErrGenerationUnavailable = errors.New("generation model unavailable")

// Generator 单次出题生成器：组装提示词、调用 LLM、恢复解析输出。
// 不做重试，重试策略归上层流水线。
type Generator struct {
	chatModel model.ChatModel
	parser    *Parser
	maxTokens int
}

// NewGenerator 创建生成器
func NewGenerator(chatModel model.ChatModel, maxTokens int) *Generator {
	return &Generator{
		chatModel: chatModel,
		parser:    NewParser(),
		maxTokens: maxTokens,
	}
}

// Generate 基于上下文和用户要求生成题目集合。
// 返回的错误可能是 *ParseError，调用方据此区分截断与内容错误。
func (g *Generator) Generate(ctx context.Context, contextText, userPrompt string, skills []string, questionCount int) (*QuizOutput, error) {
	if g.chatModel == nil {
		return nil, fmt.Errorf("%w: chat model not configured", ErrGenerationUnavailable)
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: BuildPrompt(contextText, userPrompt, skills, questionCount)},
	}

	opts := []model.Option{}
	if g.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(g.maxTokens))
	}

	resp, err := g.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	return g.parser.Parse(resp.Content)
}
