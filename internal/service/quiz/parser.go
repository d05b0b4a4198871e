// Package quiz 提供测验题目生成：提示词构建、LLM 调用与输出恢复解析。
package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ashwinyue/quiz-ai/internal/model"
	"github.com/kaptinlin/jsonrepair"
)

// ParsedAnswer LLM 输出的选项
type ParsedAnswer struct {
	AnswerText string `json:"answer_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// ParsedQuestion LLM 输出的题目
type ParsedQuestion struct {
	QuestionText string         `json:"question_text"`
	Explanation  string         `json:"explanation,omitempty"`
	Point        float64        `json:"point,omitempty"`
	QuestionType string         `json:"question_type,omitempty"`
	Answers      []ParsedAnswer `json:"answers"`
}

// QuizOutput LLM 输出的题目集合
type QuizOutput struct {
	Questions []ParsedQuestion `json:"questions"`
}

// FailureKind 解析失败类别
type FailureKind int

const (
	// FailureMalformed 内容结构错误，重试无意义
	FailureMalformed FailureKind = iota
	// FailureTruncated 输出被截断（括号不配对），调大输出预算后可重试
	FailureTruncated
)

func (k FailureKind) String() string {
	if k == FailureTruncated {
		return "truncated"
	}
	return "malformed"
}

// ParseError 所有恢复策略均失败
type ParseError struct {
	Kind FailureKind
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse llm output (%s): %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsTruncated 判断错误是否为截断类解析失败
func IsTruncated(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr) && parseErr.Kind == FailureTruncated
}

// 匹配 ```json ... ``` 围栏代码块
var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Parser 输出恢复解析器。
// LLM 返回的文本经常夹杂说明文字、围栏标记或被截断，
// 按固定顺序尝试多种恢复策略，第一个成功的即返回。
// 无副作用，相同输入产生相同结果。
type Parser struct{}

// NewParser 创建解析器
func NewParser() *Parser {
	return &Parser{}
}

// Parse 从原始文本恢复题目集合。
// 策略顺序：
//  1. 整体直接解析
//  2. 提取围栏代码块解析
//  3. 扫描首个括号配对完整的片段解析（嵌套括号无法用单个贪婪正则处理）
//  4. 剥离首尾噪声后解析
//
// 全部失败后先做截断检查：括号不配对判为 Truncated，否则再尝试
// jsonrepair 修复，仍失败判为 Malformed。
func (p *Parser) Parse(raw string) (*QuizOutput, error) {
	var lastErr error

	// 策略 1：整体直接解析
	out, err := decodeQuizOutput(raw)
	if err == nil {
		return out, nil
	}
	lastErr = err

	// 策略 2：提取围栏代码块
	if match := fencedBlockRe.FindStringSubmatch(raw); match != nil {
		out, err = decodeQuizOutput(match[1])
		if err == nil {
			return out, nil
		}
		lastErr = err
	}

	// 策略 3：扫描首个配对完整的大括号片段
	if span := extractBalancedObject(raw); span != "" {
		out, err = decodeQuizOutput(span)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}

	// 策略 4：剥离首尾噪声
	out, err = decodeQuizOutput(stripNoise(raw))
	if err == nil {
		return out, nil
	}
	lastErr = err

	// 截断检查：括号不配对说明输出被截断，
	// 调用方可以调大输出预算重试，而不是当成内容错误
	if isTruncated(raw) {
		return nil, &ParseError{Kind: FailureTruncated, Raw: raw, Err: lastErr}
	}

	// 最后手段：jsonrepair 强力修复
	if repaired, repairErr := jsonrepair.JSONRepair(stripNoise(raw)); repairErr == nil {
		out, err = decodeQuizOutput(repaired)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}

	return nil, &ParseError{Kind: FailureMalformed, Raw: raw, Err: lastErr}
}

// decodeQuizOutput 解析并校验题目集合
func decodeQuizOutput(text string) (*QuizOutput, error) {
	var out QuizOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return nil, err
	}
	if err := validateQuizOutput(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// validateQuizOutput 校验结构不变量并补默认值
func validateQuizOutput(out *QuizOutput) error {
	if len(out.Questions) == 0 {
		return fmt.Errorf("no questions in output")
	}

	for i := range out.Questions {
		q := &out.Questions[i]
		if strings.TrimSpace(q.QuestionText) == "" {
			return fmt.Errorf("question %d: empty question_text", i)
		}
		if q.QuestionType == "" {
			q.QuestionType = model.QuestionTypeSingleChoice
		}
		if q.Point <= 0 {
			q.Point = 1.0
		}
		if len(q.Answers) == 0 {
			return fmt.Errorf("question %d: no answers", i)
		}

		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}

		switch q.QuestionType {
		case model.QuestionTypeSingleChoice, model.QuestionTypeTrueFalse:
			if correct != 1 {
				return fmt.Errorf("question %d: %s requires exactly one correct answer, got %d",
					i, q.QuestionType, correct)
			}
		case model.QuestionTypeMultipleChoice:
			if correct < 1 {
				return fmt.Errorf("question %d: MULTIPLE_CHOICE requires at least one correct answer", i)
			}
		default:
			return fmt.Errorf("question %d: unknown question_type %q", i, q.QuestionType)
		}
	}

	return nil
}

// extractBalancedObject 扫描首个大括号配对完整的片段。
// 跳过字符串字面量内部的括号和转义字符。
func extractBalancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

// stripNoise 剥离首尾的围栏标记与非结构化文字
func stripNoise(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	// 去掉 JSON 对象前后的说明文字
	if i := strings.IndexByte(s, '{'); i > 0 {
		s = s[i:]
	}
	if j := strings.LastIndexByte(s, '}'); j >= 0 && j < len(s)-1 {
		s = s[:j+1]
	}

	return strings.TrimSpace(s)
}

// isTruncated 括号配对检查。
// 开闭括号数量不一致说明文本在结构中途被截断。
func isTruncated(text string) bool {
	s := strings.TrimSpace(text)

	openBraces := strings.Count(s, "{")
	closeBraces := strings.Count(s, "}")
	openBrackets := strings.Count(s, "[")
	closeBrackets := strings.Count(s, "]")
	if openBraces != closeBraces || openBrackets != closeBrackets {
		return true
	}

	// 以逗号或冒号收尾同样是截断的特征
	return strings.HasSuffix(s, ",") || strings.HasSuffix(s, ":")
}
