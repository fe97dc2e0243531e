package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/newsbi/core"
)

func TestMemoryStoreRangeDesc(t *testing.T) {
	m := NewMemoryStore()
	m.SeedRanking("board", "A", 10)
	m.SeedRanking("board", "B", 20)
	m.SeedRanking("board", "C", 10)

	entries, err := m.RangeDesc(context.Background(), "board", 0, -1)
	if err != nil {
		t.Fatalf("RangeDesc() error: %v", err)
	}
	// 并列分数按成员字典序降序（对齐 ZREVRANGE）
	want := []core.RankingEntry{{Member: "B", Score: 20}, {Member: "C", Score: 10}, {Member: "A", Score: 10}}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("got %v, want %v", entries, want)
	}

	page, err := m.RangeDesc(context.Background(), "board", 1, 1)
	if err != nil {
		t.Fatalf("RangeDesc() error: %v", err)
	}
	if len(page) != 1 || page[0].Member != "C" {
		t.Errorf("offset/count: got %v", page)
	}
}

func TestMemoryStoreBatchScoreFor(t *testing.T) {
	m := NewMemoryStore()
	m.SeedRanking("d1", "N1", 5)
	m.SeedRanking("d3", "N1", 7)

	scores, err := m.BatchScoreFor(context.Background(), []string{"d1", "d2", "d3"}, "N1")
	if err != nil {
		t.Fatalf("BatchScoreFor() error: %v", err)
	}
	if !scores[0].Found || scores[0].Value != 5 {
		t.Errorf("d1: %+v", scores[0])
	}
	if scores[1].Found {
		t.Errorf("d2 should be missing: %+v", scores[1])
	}
	if !scores[2].Found || scores[2].Value != 7 {
		t.Errorf("d3: %+v", scores[2])
	}
}

func TestMemoryStoreRecommendMerge(t *testing.T) {
	m := NewMemoryStore()
	m.SeedRanking("cate:sports", "A", 100)
	m.SeedRanking("cate:sports", "B", 90)
	m.SeedRanking("cate:tech", "A", 10) // A 跨榜累加
	m.SeedRanking("cate:tech", "C", 100)
	m.SeedSet("seen", "B")
	m.SeedSet("dislike", "D")

	buckets := []core.WeightedBucket{
		{Key: "cate:sports", Weight: 0.9},
		{Key: "cate:tech", Weight: 0.4},
	}
	got, err := m.RecommendMerge(context.Background(), buckets, "seen", "dislike", 10)
	if err != nil {
		t.Fatalf("RecommendMerge() error: %v", err)
	}
	// A = 100*0.9 + 10*0.4 = 94, C = 40, B 被 seen 剔除
	if !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("got %v, want [A C]", got)
	}

	top1, err := m.RecommendMerge(context.Background(), buckets, "seen", "dislike", 1)
	if err != nil {
		t.Fatalf("RecommendMerge() error: %v", err)
	}
	if !reflect.DeepEqual(top1, []string{"A"}) {
		t.Errorf("topN=1: got %v", top1)
	}
}

func TestMemoryStoreBatchMembers(t *testing.T) {
	m := NewMemoryStore()
	m.SeedSet(core.SeenKey("U1"), "N1", "N2")
	m.SeedSet(core.DislikeKey("U1"), "N3")
	m.SeedSet(core.SeenKey("U2"), "N4")

	sets, err := m.BatchMembers(context.Background(), []core.ExclusionRef{
		{UserID: "U1", Kind: core.ExclusionSeen},
		{UserID: "U1", Kind: core.ExclusionDislike},
		{UserID: "U2", Kind: core.ExclusionSeen},
		{UserID: "U3", Kind: core.ExclusionSeen}, // 不存在的用户
	})
	if err != nil {
		t.Fatalf("BatchMembers() error: %v", err)
	}
	want := [][]string{{"N1", "N2"}, {"N3"}, {"N4"}, {}}
	if !reflect.DeepEqual(sets, want) {
		t.Errorf("got %v, want %v", sets, want)
	}
}

func TestMemoryStoreProfile(t *testing.T) {
	m := NewMemoryStore()
	m.SeedInterest(core.InterestKey("U1"), map[string]float64{"sports": 0.9})

	p, err := m.Profile(context.Background(), "U1")
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if p["sports"] != 0.9 {
		t.Errorf("profile = %v", p)
	}

	// 不存在的用户返回空画像，不是错误
	p, err = m.Profile(context.Background(), "nobody")
	if err != nil || len(p) != 0 {
		t.Errorf("missing profile: p=%v err=%v", p, err)
	}
}
