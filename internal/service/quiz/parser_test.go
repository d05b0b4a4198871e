package quiz

import (
	"errors"
	"reflect"
	"testing"
)

const validQuizJSON = `{"questions":[{"question_text":"1 + 1 bằng mấy?","explanation":"phép cộng cơ bản","point":2,"question_type":"SINGLE_CHOICE","answers":[{"answer_text":"2","is_correct":true},{"answer_text":"3","is_correct":false}]}]}`

// ========== 恢复策略测试 ==========

func TestParse_Direct(t *testing.T) {
	p := NewParser()

	out, err := p.Parse(validQuizJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(out.Questions) != 1 {
		t.Fatalf("len(Questions) = %d, want 1", len(out.Questions))
	}

	q := out.Questions[0]
	if q.QuestionText != "1 + 1 bằng mấy?" {
		t.Errorf("QuestionText = %q", q.QuestionText)
	}
	if q.Point != 2 {
		t.Errorf("Point = %v, want 2", q.Point)
	}
	if len(q.Answers) != 2 || !q.Answers[0].IsCorrect || q.Answers[1].IsCorrect {
		t.Errorf("Answers = %+v", q.Answers)
	}
}

func TestParse_FencedBlockEqualsDirect(t *testing.T) {
	p := NewParser()

	direct, err := p.Parse(validQuizJSON)
	if err != nil {
		t.Fatalf("direct Parse() error = %v", err)
	}

	fenced, err := p.Parse("```json\n" + validQuizJSON + "\n```")
	if err != nil {
		t.Fatalf("fenced Parse() error = %v", err)
	}

	if !reflect.DeepEqual(direct, fenced) {
		t.Errorf("fenced result differs from direct result:\n%+v\n%+v", fenced, direct)
	}
}

func TestParse_FencedBlockWithoutLanguageTag(t *testing.T) {
	p := NewParser()

	out, err := p.Parse("```\n" + validQuizJSON + "\n```")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(out.Questions) != 1 {
		t.Errorf("len(Questions) = %d, want 1", len(out.Questions))
	}
}

func TestParse_BalancedScanWithSurroundingProse(t *testing.T) {
	p := NewParser()

	raw := "Dưới đây là các câu hỏi đã tạo:\n" + validQuizJSON + "\nHy vọng hữu ích!"
	out, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(out.Questions) != 1 {
		t.Errorf("len(Questions) = %d, want 1", len(out.Questions))
	}
}

func TestParse_RepairTrailingComma(t *testing.T) {
	p := NewParser()

	raw := `{"questions":[{"question_text":"Thủ đô của Việt Nam?","answers":[{"answer_text":"Hà Nội","is_correct":true},{"answer_text":"Huế","is_correct":false},]}]}`
	out, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(out.Questions[0].Answers) != 2 {
		t.Errorf("len(Answers) = %d, want 2", len(out.Questions[0].Answers))
	}
}

// ========== 默认值测试 ==========

func TestParse_Defaults(t *testing.T) {
	p := NewParser()

	// 缺 point 和 question_type
	raw := `{"questions":[{"question_text":"q","answers":[{"answer_text":"a","is_correct":true}]}]}`
	out, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	q := out.Questions[0]
	if q.QuestionType != "SINGLE_CHOICE" {
		t.Errorf("QuestionType = %q, want SINGLE_CHOICE", q.QuestionType)
	}
	if q.Point != 1.0 {
		t.Errorf("Point = %v, want 1.0", q.Point)
	}
}

// ========== 失败分类测试 ==========

func TestParse_TruncatedTrailingOpenBrace(t *testing.T) {
	p := NewParser()

	raw := `{"questions":[{"question_text":"Giải phương trình","answers":[{`
	_, err := p.Parse(raw)
	if err == nil {
		t.Fatal("Parse() error = nil, want truncated error")
	}
	if !IsTruncated(err) {
		t.Errorf("IsTruncated(%v) = false, want true", err)
	}
}

func TestParse_TruncatedMidString(t *testing.T) {
	p := NewParser()

	raw := "```json\n" + `{"questions":[{"question_text":"Câu hỏi bị cắt`
	_, err := p.Parse(raw)
	if !IsTruncated(err) {
		t.Errorf("IsTruncated(%v) = false, want true", err)
	}
}

func TestParse_MalformedNotTruncated(t *testing.T) {
	p := NewParser()

	_, err := p.Parse("xin lỗi, tôi không thể tạo câu hỏi cho nội dung này")
	if err == nil {
		t.Fatal("Parse() error = nil, want malformed error")
	}
	if IsTruncated(err) {
		t.Errorf("IsTruncated(%v) = true, want false", err)
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != FailureMalformed {
		t.Errorf("error kind = %v, want malformed", err)
	}
}

func TestParse_EmptyQuestions(t *testing.T) {
	p := NewParser()

	_, err := p.Parse(`{"questions":[]}`)
	if err == nil {
		t.Fatal("Parse() error = nil, want error")
	}
	if IsTruncated(err) {
		t.Errorf("empty question set classified as truncated: %v", err)
	}
}

// ========== 不变量校验测试 ==========

func TestParse_InvariantViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "single choice with two correct",
			raw:  `{"questions":[{"question_text":"q","question_type":"SINGLE_CHOICE","answers":[{"answer_text":"a","is_correct":true},{"answer_text":"b","is_correct":true}]}]}`,
		},
		{
			name: "true false with zero correct",
			raw:  `{"questions":[{"question_text":"q","question_type":"TRUE_FALSE","answers":[{"answer_text":"Đúng","is_correct":false},{"answer_text":"Sai","is_correct":false}]}]}`,
		},
		{
			name: "multiple choice with zero correct",
			raw:  `{"questions":[{"question_text":"q","question_type":"MULTIPLE_CHOICE","answers":[{"answer_text":"a","is_correct":false}]}]}`,
		},
		{
			name: "unknown question type",
			raw:  `{"questions":[{"question_text":"q","question_type":"ESSAY","answers":[{"answer_text":"a","is_correct":true}]}]}`,
		},
		{
			name: "no answers",
			raw:  `{"questions":[{"question_text":"q","question_type":"SINGLE_CHOICE","answers":[]}]}`,
		},
		{
			name: "empty question text",
			raw:  `{"questions":[{"question_text":"  ","answers":[{"answer_text":"a","is_correct":true}]}]}`,
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.raw)
			if err == nil {
				t.Fatal("Parse() error = nil, want invariant violation")
			}
			if IsTruncated(err) {
				t.Errorf("invariant violation classified as truncated: %v", err)
			}
		})
	}
}

func TestParse_MultipleChoiceSeveralCorrect(t *testing.T) {
	p := NewParser()

	raw := `{"questions":[{"question_text":"q","question_type":"MULTIPLE_CHOICE","answers":[{"answer_text":"a","is_correct":true},{"answer_text":"b","is_correct":true},{"answer_text":"c","is_correct":false}]}]}`
	out, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(out.Questions[0].Answers) != 3 {
		t.Errorf("len(Answers) = %d, want 3", len(out.Questions[0].Answers))
	}
}

// ========== 辅助函数测试 ==========

func TestExtractBalancedObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "braces inside string literal",
			input: `trước {"a":"giá trị có } và {"} sau`,
			want:  `{"a":"giá trị có } và {"}`,
		},
		{
			name:  "nested objects",
			input: `x {"a":{"b":1}} y`,
			want:  `{"a":{"b":1}}`,
		},
		{
			name:  "unbalanced",
			input: `{"a":1`,
			want:  "",
		},
		{
			name:  "no object",
			input: "không có gì",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractBalancedObject(tt.input); got != tt.want {
				t.Errorf("extractBalancedObject(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsTruncatedHelper(t *testing.T) {
	if IsTruncated(nil) {
		t.Error("IsTruncated(nil) = true")
	}
	if !IsTruncated(&ParseError{Kind: FailureTruncated}) {
		t.Error("IsTruncated(truncated) = false")
	}
	if IsTruncated(&ParseError{Kind: FailureMalformed}) {
		t.Error("IsTruncated(malformed) = true")
	}
}
