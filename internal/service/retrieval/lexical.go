package retrieval

import (
	"math"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/unicode/norm"
)

// BM25 参数，取常用默认值
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// LexicalRetriever BM25 词法检索器。
// 对语料构建词频索引，纯函数式打分，无副作用。
type LexicalRetriever struct {
	docs      []*schema.Document
	tokenized [][]string
	docFreq   map[string]int
	docLens   []int
	avgDocLen float64
}

// NewLexicalRetriever 对给定语料构建词法索引
func NewLexicalRetriever(docs []*schema.Document) *LexicalRetriever {
	r := &LexicalRetriever{
		docs:      docs,
		tokenized: make([][]string, len(docs)),
		docFreq:   make(map[string]int),
		docLens:   make([]int, len(docs)),
	}

	totalLen := 0
	for i, doc := range docs {
		tokens := Tokenize(doc.Content)
		r.tokenized[i] = tokens
		r.docLens[i] = len(tokens)
		totalLen += len(tokens)

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				r.docFreq[tok]++
			}
		}
	}

	if len(docs) > 0 {
		r.avgDocLen = float64(totalLen) / float64(len(docs))
	}

	return r
}

// Search 对查询打分，返回长度不超过 topK 的降序结果。
// 相同分数按语料顺序稳定排序。
func (r *LexicalRetriever) Search(query string, topK int) RankedList {
	if len(r.docs) == 0 || topK <= 0 {
		return RankedList{}
	}

	queryTokens := Tokenize(query)
	n := float64(len(r.docs))

	results := make(RankedList, len(r.docs))
	for i := range r.docs {
		results[i] = RankedItem{Index: i, Score: r.score(queryTokens, i, n)}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results
}

// score 计算单个段落的 BM25 分数
func (r *LexicalRetriever) score(queryTokens []string, idx int, n float64) float64 {
	tf := make(map[string]int)
	for _, tok := range r.tokenized[idx] {
		tf[tok]++
	}

	docLen := float64(r.docLens[idx])
	score := 0.0
	for _, tok := range queryTokens {
		freq := float64(tf[tok])
		if freq == 0 {
			continue
		}
		df := float64(r.docFreq[tok])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		lengthNorm := bm25K1 * (1 - bm25B + bm25B*docLen/r.avgDocLen)
		score += idf * freq * (bm25K1 + 1) / (freq + lengthNorm)
	}
	return score
}

// Tokenize 分词：NFC 规范化（越南语等带变音符文本组合形式与分解形式统一）、
// 小写化、按空白切分。
func Tokenize(text string) []string {
	normalized := norm.NFC.String(text)
	return strings.Fields(strings.ToLower(normalized))
}
