package retrieval

import "sort"

// DefaultRRFK RRF 平滑常数默认值
const DefaultRRFK = 60

// FuseRRF 倒数排名融合（Reciprocal Rank Fusion）。
// 对出现在任一列表中的段落，融合分数为 Σ 1/(k+rank+1)，rank 从 0 开始，
// 未出现在某个列表中的段落对该列表贡献为 0。
// 词法分数与向量相似度不在同一量纲上，按排名融合与分数尺度无关，
// 只被一个检索器召回的段落不会因另一方的分数量级被不公平压低。
// 输出按融合分数降序，同分先比最佳单列表排名，再比语料顺序，结果确定。
func FuseRRF(lists []RankedList, k int) []FusedCandidate {
	if k <= 0 {
		k = DefaultRRFK
	}

	merged := make(map[int]*FusedCandidate)
	for _, list := range lists {
		for rank, item := range list {
			cand, ok := merged[item.Index]
			if !ok {
				cand = &FusedCandidate{Index: item.Index, BestRank: rank}
				merged[item.Index] = cand
			}
			cand.Score += 1.0 / float64(k+rank+1)
			if rank < cand.BestRank {
				cand.BestRank = rank
			}
		}
	}

	fused := make([]FusedCandidate, 0, len(merged))
	for _, cand := range merged {
		fused = append(fused, *cand)
	}

	sort.Slice(fused, func(a, b int) bool {
		if fused[a].Score != fused[b].Score {
			return fused[a].Score > fused[b].Score
		}
		if fused[a].BestRank != fused[b].BestRank {
			return fused[a].BestRank < fused[b].BestRank
		}
		return fused[a].Index < fused[b].Index
	})

	return fused
}
