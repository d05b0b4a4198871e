// Package retrieval 提供混合检索能力：BM25 词法检索 + 向量语义检索 + RRF 融合。
// 检索索引按任务构建，任务结束即丢弃，不跨任务复用。
package retrieval

// RankedItem 单个检索结果，Index 为段落在语料中的位置
type RankedItem struct {
	Index int
	Score float64
}

// RankedList 按分数降序排列的检索结果，下标即排名（从 0 开始）
type RankedList []RankedItem

// FusedCandidate 融合后的候选段落
type FusedCandidate struct {
	Index    int     // 段落在语料中的位置
	Score    float64 // RRF 融合分数
	BestRank int     // 在任一单列表中取得的最佳排名
}
