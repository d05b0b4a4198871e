// Package retrieval 提供 BM25 词法检索单元测试
package retrieval

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/unicode/norm"
)

func newTestDocs(contents ...string) []*schema.Document {
	docs := make([]*schema.Document, len(contents))
	for i, content := range contents {
		docs[i] = &schema.Document{ID: string(rune('a' + i)), Content: content}
	}
	return docs
}

// ========== Tokenize 测试 ==========

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercase and split",
			input: "Giải Phương Trình bậc hai",
			want:  []string{"giải", "phương", "trình", "bậc", "hai"},
		},
		{
			name:  "collapse whitespace",
			input: "  a \t b\nc  ",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "empty",
			input: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenize_DiacriticNormalization(t *testing.T) {
	// 组合形式（NFC）与分解形式（NFD）的同一个词应产生相同 token
	composed := "trình"
	decomposed := norm.NFD.String(composed)
	a := Tokenize(composed)
	b := Tokenize(decomposed)
	if len(a) != 1 || len(b) != 1 || a[0] != b[0] {
		t.Errorf("NFC/NFD tokens differ: %v vs %v", a, b)
	}
}

// ========== LexicalRetriever 测试 ==========

func TestLexicalRetriever_ExactMatchOutranksNoOverlap(t *testing.T) {
	docs := newTestDocs(
		"hôm nay trời đẹp",
		"cách giải phương trình bậc hai",
		"lịch sử thế giới cận đại",
	)
	r := NewLexicalRetriever(docs)

	results := r.Search("phương trình", 3)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Index != 1 {
		t.Errorf("top result index = %d, want 1 (exact match)", results[0].Index)
	}
	if results[0].Score <= 0 {
		t.Errorf("exact match score = %v, want > 0", results[0].Score)
	}
	// 无重叠词的段落分数为 0
	for _, item := range results[1:] {
		if item.Score != 0 {
			t.Errorf("no-overlap passage %d score = %v, want 0", item.Index, item.Score)
		}
	}
}

func TestLexicalRetriever_StableTieBreak(t *testing.T) {
	// 全部无重叠，分数均为 0，应保持语料顺序
	docs := newTestDocs("một", "hai", "ba", "bốn")
	r := NewLexicalRetriever(docs)

	results := r.Search("năm", 4)

	for i, item := range results {
		if item.Index != i {
			t.Errorf("results[%d].Index = %d, want %d (corpus order)", i, item.Index, i)
		}
	}
}

func TestLexicalRetriever_TopKTruncation(t *testing.T) {
	docs := newTestDocs("a b", "a c", "a d", "a e", "a f")
	r := NewLexicalRetriever(docs)

	results := r.Search("a", 2)

	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestLexicalRetriever_EmptyCorpus(t *testing.T) {
	r := NewLexicalRetriever(nil)
	results := r.Search("anything", 5)
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestLexicalRetriever_LengthPenalty(t *testing.T) {
	// 同样包含一次查询词，短段落应得分更高（BM25 长度归一化）
	docs := newTestDocs(
		"phương trình",
		"phương trình là một khái niệm toán học xuất hiện trong rất nhiều bài toán khác nhau của chương trình phổ thông",
	)
	r := NewLexicalRetriever(docs)

	results := r.Search("phương trình", 2)

	if results[0].Index != 0 {
		t.Errorf("top result index = %d, want 0 (shorter passage)", results[0].Index)
	}
}
