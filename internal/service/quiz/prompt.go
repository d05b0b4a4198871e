package quiz

import (
	"fmt"
	"strings"
)

// systemPrompt 出题系统提示词
const systemPrompt = `Bạn là một chuyên gia tạo câu hỏi trắc nghiệm cho giáo dục. Bạn luôn trả lời bằng JSON hợp lệ, không thêm bất kỳ văn bản nào khác.`

// formatInstructions 输出格式说明，内嵌到用户提示词末尾。
// 字段名必须与 QuizOutput 的 JSON tag 保持一致。
const formatInstructions = `Trả về kết quả theo đúng định dạng JSON sau (không thêm giải thích bên ngoài JSON):
{
  "questions": [
    {
      "question_text": "Nội dung câu hỏi",
      "explanation": "Giải thích đáp án",
      "point": 1.0,
      "question_type": "SINGLE_CHOICE | MULTIPLE_CHOICE | TRUE_FALSE",
      "answers": [
        {"answer_text": "Nội dung đáp án", "is_correct": true}
      ]
    }
  ]
}

Ràng buộc:
- SINGLE_CHOICE và TRUE_FALSE: đúng một đáp án có is_correct = true
- MULTIPLE_CHOICE: ít nhất một đáp án có is_correct = true
- TRUE_FALSE: đúng hai đáp án "Đúng" và "Sai"`

// BuildPrompt 组装出题提示词：检索到的上下文 + 用户要求 + 格式说明
func BuildPrompt(contextText, userPrompt string, skills []string, questionCount int) string {
	var b strings.Builder

	b.WriteString("Dựa trên nội dung bài học dưới đây, hãy tạo câu hỏi trắc nghiệm.\n\n")
	b.WriteString("--- NỘI DUNG BÀI HỌC ---\n")
	b.WriteString(contextText)
	b.WriteString("\n--- HẾT NỘI DUNG ---\n\n")

	b.WriteString("Yêu cầu: ")
	b.WriteString(userPrompt)
	b.WriteString("\n")

	if questionCount > 0 {
		fmt.Fprintf(&b, "Số lượng câu hỏi: %d\n", questionCount)
	}
	if len(skills) > 0 {
		fmt.Fprintf(&b, "Kỹ năng cần kiểm tra: %s\n", strings.Join(skills, ", "))
	}

	b.WriteString("\n")
	b.WriteString(formatInstructions)

	return b.String()
}
