// Package retrieval 提供 RRF 融合单元测试
package retrieval

import (
	"reflect"
	"testing"
)

// ========== FuseRRF 测试 ==========

func TestFuseRRF_BothListsOutrankSingle(t *testing.T) {
	// 段落 0 在两个列表中都排第 0，段落 1 只在一个列表中排第 0
	listA := RankedList{{Index: 0, Score: 9.0}, {Index: 2, Score: 1.0}}
	listB := RankedList{{Index: 0, Score: 0.8}, {Index: 1, Score: 0.7}}

	fused := FuseRRF([]RankedList{listA, listB}, 60)

	if len(fused) != 3 {
		t.Fatalf("len(fused) = %d, want 3", len(fused))
	}
	if fused[0].Index != 0 {
		t.Errorf("fused[0].Index = %d, want 0", fused[0].Index)
	}

	var scoreOfZero, scoreOfOne float64
	for _, cand := range fused {
		switch cand.Index {
		case 0:
			scoreOfZero = cand.Score
		case 1:
			scoreOfOne = cand.Score
		}
	}
	if scoreOfZero <= scoreOfOne {
		t.Errorf("double-ranked passage score = %v, want > single-ranked %v", scoreOfZero, scoreOfOne)
	}
}

func TestFuseRRF_Formula(t *testing.T) {
	// rank 0 贡献 1/(k+1)，rank 1 贡献 1/(k+2)
	list := RankedList{{Index: 3}, {Index: 7}}
	fused := FuseRRF([]RankedList{list}, 60)

	want0 := 1.0 / 61.0
	want1 := 1.0 / 62.0
	if fused[0].Score != want0 {
		t.Errorf("fused[0].Score = %v, want %v", fused[0].Score, want0)
	}
	if fused[1].Score != want1 {
		t.Errorf("fused[1].Score = %v, want %v", fused[1].Score, want1)
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	listA := RankedList{{Index: 2}, {Index: 0}, {Index: 4}}
	listB := RankedList{{Index: 1}, {Index: 2}, {Index: 3}}

	first := FuseRRF([]RankedList{listA, listB}, 60)
	for i := 0; i < 10; i++ {
		again := FuseRRF([]RankedList{listA, listB}, 60)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: fusion order differs from first run", i)
		}
	}
}

func TestFuseRRF_TieBreak(t *testing.T) {
	// 段落 5 和段落 2 分数相同且最佳排名相同，按语料顺序 2 在前
	listA := RankedList{{Index: 5}}
	listB := RankedList{{Index: 2}}

	fused := FuseRRF([]RankedList{listA, listB}, 60)

	if len(fused) != 2 {
		t.Fatalf("len(fused) = %d, want 2", len(fused))
	}
	if fused[0].Index != 2 || fused[1].Index != 5 {
		t.Errorf("tie-break order = [%d %d], want [2 5]", fused[0].Index, fused[1].Index)
	}
}

func TestFuseRRF_DefaultK(t *testing.T) {
	list := RankedList{{Index: 0}}

	fused := FuseRRF([]RankedList{list}, 0)

	want := 1.0 / float64(DefaultRRFK+1)
	if fused[0].Score != want {
		t.Errorf("score with k=0 = %v, want default-k score %v", fused[0].Score, want)
	}
}

func TestFuseRRF_EmptyInput(t *testing.T) {
	fused := FuseRRF(nil, 60)
	if len(fused) != 0 {
		t.Errorf("len(fused) = %d, want 0", len(fused))
	}
}
