package retrieval

import (
	"context"
	"errors"
	"log"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
)

// DefaultCandidatesN 每个检索器的默认候选数量
const DefaultCandidatesN = 20

// Config 混合检索配置
type Config struct {
	RRFK        int // RRF 平滑常数，默认 60
	CandidatesN int // 每个检索器的候选数量，默认 20
}

// Result 混合检索结果
type Result struct {
	// Docs 融合排序后的段落，带融合分数
	Docs []*schema.Document
	// Degraded 语义检索不可用、仅按词法排序时为 true。
	// 降级必须对调用方可见，不做静默替换。
	Degraded bool
}

// HybridRetriever 混合检索器：BM25 + 向量检索 + RRF 融合。
// 对单个任务的语料构建，任务结束即丢弃。
type HybridRetriever struct {
	docs     []*schema.Document
	lexical  *LexicalRetriever
	embedder embedding.Embedder
	cfg      Config
}

// NewHybridRetriever 对给定语料创建混合检索器。
// 词法索引立即构建；向量索引在首次检索时构建，
// 这样向量化失败可以降级而不是让构建失败。
func NewHybridRetriever(docs []*schema.Document, embedder embedding.Embedder, cfg Config) *HybridRetriever {
	if cfg.RRFK <= 0 {
		cfg.RRFK = DefaultRRFK
	}
	if cfg.CandidatesN <= 0 {
		cfg.CandidatesN = DefaultCandidatesN
	}

	return &HybridRetriever{
		docs:     docs,
		lexical:  NewLexicalRetriever(docs),
		embedder: embedder,
		cfg:      cfg,
	}
}

// Retrieve 执行混合检索，返回融合后的前 topK 个段落。
// 语义检索失败时降级为纯词法排序，并在结果中标记 Degraded。
func (h *HybridRetriever) Retrieve(ctx context.Context, query string, topK int) (*Result, error) {
	if topK <= 0 {
		topK = h.cfg.CandidatesN
	}

	lexicalList := h.lexical.Search(query, h.cfg.CandidatesN)

	semanticList, err := h.semanticSearch(ctx, query)
	if err != nil {
		if !errors.Is(err, ErrEmbeddingUnavailable) {
			return nil, err
		}
		// 降级：语义检索不可用，仅按词法排序
		log.Printf("Warning: semantic retrieval unavailable, falling back to lexical-only: %v", err)
		return &Result{
			Docs:     h.collect([]RankedList{lexicalList}, topK),
			Degraded: true,
		}, nil
	}

	return &Result{
		Docs: h.collect([]RankedList{lexicalList, semanticList}, topK),
	}, nil
}

// semanticSearch 构建向量索引并检索
func (h *HybridRetriever) semanticSearch(ctx context.Context, query string) (RankedList, error) {
	semantic, err := NewSemanticRetriever(ctx, h.docs, h.embedder)
	if err != nil {
		return nil, err
	}
	return semantic.Search(ctx, query, h.cfg.CandidatesN)
}

// collect 融合排序并取前 topK 个段落
func (h *HybridRetriever) collect(lists []RankedList, topK int) []*schema.Document {
	fused := FuseRRF(lists, h.cfg.RRFK)
	if topK < len(fused) {
		fused = fused[:topK]
	}

	docs := make([]*schema.Document, 0, len(fused))
	for _, cand := range fused {
		docs = append(docs, h.docs[cand.Index].WithScore(cand.Score))
	}
	return docs
}
