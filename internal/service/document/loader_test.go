package document

import (
	"context"
	"strings"
	"testing"
)

func TestTextParser(t *testing.T) {
	p := &textParser{}

	docs, err := p.Parse(context.Background(), strings.NewReader("nội dung bài học"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "nội dung bài học" {
		t.Errorf("docs = %+v, want single doc with original content", docs)
	}
}

func TestTextParser_Empty(t *testing.T) {
	p := &textParser{}

	docs, err := p.Parse(context.Background(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("len(docs) = %d, want 0", len(docs))
	}
}

func TestNewParser_UnsupportedType(t *testing.T) {
	l := &Loader{}

	_, err := l.newParser(context.Background(), "slides.pptx")
	if err == nil {
		t.Error("newParser(.pptx) error = nil, want unsupported file type")
	}
}

func TestNewParser_TextTypes(t *testing.T) {
	l := &Loader{}

	for _, path := range []string{"notes.txt", "README.md", "NOTES.TXT"} {
		if _, err := l.newParser(context.Background(), path); err != nil {
			t.Errorf("newParser(%s) error = %v", path, err)
		}
	}
}
