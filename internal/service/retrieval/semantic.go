package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
)

// ErrEmbeddingUnavailable 远程向量化服务不可用。
// 调用方据此决定降级为纯词法检索还是中止。
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// SemanticRetriever 向量语义检索器。
// 构建时对全部段落做一次批量向量化，在内存中保存归一化向量，
// 检索时用内积（等价于归一化后的余弦相似度）取最近邻。
type SemanticRetriever struct {
	docs     []*schema.Document
	embedder embedding.Embedder
	vectors  [][]float64 // L2 归一化后的段落向量
}

// NewSemanticRetriever 向量化语料并构建内存索引。
// 向量化失败时返回 ErrEmbeddingUnavailable。
func NewSemanticRetriever(ctx context.Context, docs []*schema.Document, embedder embedding.Embedder) (*SemanticRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder not configured", ErrEmbeddingUnavailable)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	vectors, err := embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: got %d vectors for %d passages", ErrEmbeddingUnavailable, len(vectors), len(docs))
	}

	for i := range vectors {
		normalizeVector(vectors[i])
	}

	return &SemanticRetriever{
		docs:     docs,
		embedder: embedder,
		vectors:  vectors,
	}, nil
}

// Search 向量化查询并返回长度不超过 topK 的降序结果。
// 相同分数按语料顺序稳定排序。
func (r *SemanticRetriever) Search(ctx context.Context, query string, topK int) (RankedList, error) {
	if len(r.docs) == 0 || topK <= 0 {
		return RankedList{}, nil
	}

	queryVectors, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(queryVectors) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", ErrEmbeddingUnavailable)
	}
	queryVec := queryVectors[0]
	normalizeVector(queryVec)

	results := make(RankedList, len(r.docs))
	for i, vec := range r.vectors {
		results[i] = RankedItem{Index: i, Score: dotProduct(queryVec, vec)}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// normalizeVector 原地 L2 归一化
func normalizeVector(vec []float64) {
	sum := 0.0
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	length := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= length
	}
}

// dotProduct 内积，维度不一致时按较短的算
func dotProduct(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
