// Package document 提供课时文档的解析与分块，直接使用 eino/eino-ext 组件。
package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/docx"
	"github.com/cloudwego/eino-ext/components/document/parser/html"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/quiz-ai/internal/config"
	"github.com/ashwinyue/quiz-ai/internal/repository"
)

// Loader 按课时加载语料：解析课件文件并切成段落。
// 段落 ID 由课时与切块位置决定，同一文件多次加载产生相同 ID。
type Loader struct {
	repo *repository.Repositories
	cfg  *config.Config
}

// NewLoader 创建语料加载器
func NewLoader(repo *repository.Repositories, cfg *config.Config) *Loader {
	return &Loader{repo: repo, cfg: cfg}
}

// Passages 加载课时课件并切块，实现 quiz.CorpusProvider
func (l *Loader) Passages(ctx context.Context, lessonID string) ([]*schema.Document, error) {
	lesson, err := l.repo.Course.GetLessonByID(lessonID)
	if err != nil {
		return nil, fmt.Errorf("lesson not found: %w", err)
	}
	if lesson.DocumentPath == "" {
		return nil, fmt.Errorf("lesson %s has no document", lessonID)
	}

	docs, err := l.parseFile(ctx, lesson.DocumentPath)
	if err != nil {
		return nil, err
	}

	chunks, err := l.splitDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}

	for i, chunk := range chunks {
		chunk.ID = fmt.Sprintf("%s:%d", lessonID, i)
		if chunk.MetaData == nil {
			chunk.MetaData = make(map[string]any)
		}
		chunk.MetaData["lesson_id"] = lessonID
		chunk.MetaData["lesson_title"] = lesson.Title
		chunk.MetaData["chunk_index"] = i
	}

	return chunks, nil
}

// parseFile 按扩展名选择解析器解析文件
func (l *Loader) parseFile(ctx context.Context, filePath string) ([]*schema.Document, error) {
	fileParser, err := l.newParser(ctx, filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	docs, err := fileParser.Parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("parser failed: %w", err)
	}
	return docs, nil
}

// newParser 创建解析器
func (l *Loader) newParser(ctx context.Context, filePath string) (einoparser.Parser, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".pdf":
		return pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	case ".docx":
		return docx.NewDocxParser(ctx, &docx.Config{
			ToSections:      false,
			IncludeComments: false,
			IncludeHeaders:  true,
			IncludeFooters:  false,
			IncludeTables:   true,
		})
	case ".html", ".htm":
		// 使用 body 选择器提取正文内容
		bodySelector := "body"
		return html.NewParser(ctx, &html.Config{
			Selector: &bodySelector,
		})
	case ".txt", ".md":
		return &textParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// textParser 纯文本解析器
type textParser struct{}

func (p *textParser) Parse(_ context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}

	text := string(content)
	if text == "" {
		return []*schema.Document{}, nil
	}

	return []*schema.Document{
		{
			Content:  text,
			MetaData: make(map[string]any),
		},
	}, nil
}

// splitDocuments 递归切块
func (l *Loader) splitDocuments(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	splitter, err := recursive.NewSplitter(ctx, &recursive.Config{
		ChunkSize:   l.cfg.Quiz.ChunkSize,
		OverlapSize: l.cfg.Quiz.ChunkOverlap,
		Separators:  []string{"\n\n", "\n", ". ", "。", "? ", "？", "! ", "！", ", ", "，", " ", ""},
		KeepType:    recursive.KeepTypeNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}

	chunks, err := splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("splitter failed: %w", err)
	}
	return chunks, nil
}
