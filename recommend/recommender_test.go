package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/newsbi/core"
	"github.com/rushteam/newsbi/store"
)

type fakeMeta struct {
	news map[string]core.News
}

func (f *fakeMeta) BatchAttributes(ctx context.Context, ids []string) (map[string]core.NewsAttributes, error) {
	return nil, nil
}

func (f *fakeMeta) FindByIDs(ctx context.Context, ids []string) (map[string]core.News, error) {
	out := make(map[string]core.News)
	for _, id := range ids {
		if n, ok := f.news[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

var testWindow = core.DataWindow{
	Min: time.Date(2019, time.June, 13, 0, 0, 0, 0, time.UTC),
	Max: time.Date(2019, time.July, 12, 0, 0, 0, 0, time.UTC),
}

// newTestRecommender 造数：U1 兴趣 sports=0.9 tech=0.4，已读 B。
// 2019-07-12 的类别日榜：sports 有 A=100 B=90，tech 有 C=100。
func newTestRecommender() (*Recommender, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	day := testWindow.Max

	mem.SeedInterest(core.InterestKey("U1"), map[string]float64{"sports": 0.9, "tech": 0.4})
	mem.SeedRanking(core.CategoryDailyRankKey("sports", day), "A", 100)
	mem.SeedRanking(core.CategoryDailyRankKey("sports", day), "B", 90)
	mem.SeedRanking(core.CategoryDailyRankKey("tech", day), "C", 100)
	mem.SeedSet(core.SeenKey("U1"), "B")

	meta := &fakeMeta{news: map[string]core.News{
		"A": {ID: "A", Headline: "final score", Category: "sports", Topic: "soccer"},
		"B": {ID: "B", Headline: "transfer news", Category: "sports"},
		"C": {ID: "C", Headline: "chip release", Category: "tech"},
	}}

	return NewRecommender(mem, mem, meta, testWindow), mem
}

func TestRecommend(t *testing.T) {
	r, _ := newTestRecommender()

	items, err := r.Recommend(context.Background(), "U1", time.Time{}, 10)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}

	// A: 100*0.9=90 > C: 100*0.4=40；B 已读被剔除
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %v", len(items), items)
	}
	if items[0].NewsID != "A" || items[1].NewsID != "C" {
		t.Errorf("order = [%s %s], want [A C]", items[0].NewsID, items[1].NewsID)
	}
	if items[0].Headline != "final score" || items[0].Category != "sports" {
		t.Errorf("metadata not joined: %+v", items[0])
	}
}

func TestRecommendEmptyProfile(t *testing.T) {
	r, _ := newTestRecommender()

	items, err := r.Recommend(context.Background(), "stranger", time.Time{}, 10)
	if err != nil {
		t.Fatalf("empty profile must not be an error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestRecommendDislikeExcluded(t *testing.T) {
	r, mem := newTestRecommender()
	mem.SeedSet(core.DislikeKey("U1"), "A")

	items, err := r.Recommend(context.Background(), "U1", time.Time{}, 10)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(items) != 1 || items[0].NewsID != "C" {
		t.Errorf("dislike exclusion: got %v, want [C]", items)
	}
}

func TestRecommendTopNLimit(t *testing.T) {
	r, _ := newTestRecommender()

	items, err := r.Recommend(context.Background(), "U1", time.Time{}, 1)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(items) != 1 || items[0].NewsID != "A" {
		t.Errorf("topN=1: got %v, want [A]", items)
	}
}

func TestRecommendMissingMetadataKeepsID(t *testing.T) {
	r, mem := newTestRecommender()
	mem.SeedRanking(core.CategoryDailyRankKey("sports", testWindow.Max), "GHOST", 999)

	items, err := r.Recommend(context.Background(), "U1", time.Time{}, 10)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if items[0].NewsID != "GHOST" || items[0].Headline != "" {
		t.Errorf("unknown id must keep its slot with empty metadata: %+v", items[0])
	}
}
