// Package recommend 实现基于兴趣画像的个性化推荐：取用户的类别兴趣权重，
// 对头部类别的当日榜单做一次原子加权合并，排除已读与不喜欢的新闻。
package recommend

import (
	"context"
	"time"

	"github.com/rushteam/newsbi/core"
)

// 画像中参与合并的头部类别数与默认返回条数。
const (
	topCategories = 5
	defaultTopN   = 20
	maxTopN       = 100
)

// Item 是一条推荐结果。榜单有 ID 而关系库缺元数据时展示字段为空，
// 条目不剔除（ID 本身仍可消费）。
type Item struct {
	NewsID   string `json:"newsId"`
	Headline string `json:"headline"`
	Category string `json:"category"`
	Topic    string `json:"topic"`
}

// Recommender 把兴趣画像、榜单合并与元数据联查串成推荐流程。
type Recommender struct {
	Interests core.InterestStore
	Merger    core.RecommendMerger
	Meta      core.MetadataLookup
	Window    core.DataWindow
}

func NewRecommender(interests core.InterestStore, merger core.RecommendMerger, meta core.MetadataLookup, window core.DataWindow) *Recommender {
	return &Recommender{Interests: interests, Merger: merger, Meta: meta, Window: window}
}

// Recommend 为用户生成至多 topN 条推荐。
//
// 流程：读画像（空画像返回空列表，不是错误）→ 取权重最高的 5 个类别 →
// 以权重为系数对各类别的 asOf 当日榜做一次原子合并，剔除该用户
// 已读与不喜欢集合中的成员 → 按合并结果顺序联查元数据。
//
// asOf 为零值时取数据窗口上界；越界日期夹取到边界。
func (r *Recommender) Recommend(ctx context.Context, userID string, asOf time.Time, topN int) ([]Item, error) {
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}
	day := r.Window.ClampEnd(asOf)

	profile, err := r.Interests.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	top := profile.TopK(topCategories)
	if len(top) == 0 {
		return []Item{}, nil
	}

	buckets := make([]core.WeightedBucket, len(top))
	for i, cw := range top {
		buckets[i] = core.WeightedBucket{
			Key:    core.CategoryDailyRankKey(cw.Category, day),
			Weight: cw.Weight,
		}
	}

	ids, err := r.Merger.RecommendMerge(ctx, buckets, core.SeenKey(userID), core.DislikeKey(userID), topN)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Item{}, nil
	}

	news, err := r.Meta.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{NewsID: id}
		if n, ok := news[id]; ok {
			items[i].Headline = n.Headline
			items[i].Category = n.Category
			items[i].Topic = n.Topic
		}
	}
	return items, nil
}
