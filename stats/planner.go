package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/newsbi/core"
	"github.com/rushteam/newsbi/pkg/dsl"
)

// Planner 按策略执行统计查询：榜单存储给点击计数，排除/已读集合给
// 用户候选集，关系库给属性过滤需要的元数据。
type Planner struct {
	Ranking    core.RankingStore
	Exclusions core.ExclusionStore
	Meta       core.MetadataLookup
	Window     core.DataWindow
}

func NewPlanner(ranking core.RankingStore, exclusions core.ExclusionStore, meta core.MetadataLookup, window core.DataWindow) *Planner {
	return &Planner{Ranking: ranking, Exclusions: exclusions, Meta: meta, Window: window}
}

// Query 执行一次统计查询。
//
// 流程：规范化参数 → 编译可选 CEL 谓词 → 解析并夹取日期 → 策略分类 →
// 走对应路径拿到 ClickCountMap → 公共排序分页尾部。
func (p *Planner) Query(ctx context.Context, f *Filters) (*Result, error) {
	f.Normalize()

	pred, err := dsl.CompileAttributePredicate(f.Expr)
	if err != nil {
		return nil, err
	}

	days, err := p.resolveDays(f)
	if err != nil {
		return nil, err
	}

	strategy := Classify(f)
	var clicks core.ClickCountMap
	switch strategy {
	case StrategyRange:
		clicks, err = p.rangeClicks(ctx, days)
	case StrategyCategory:
		clicks, err = p.categoryClicks(ctx, f.Category, days)
	case StrategyBehavior:
		clicks, err = p.behaviorClicks(ctx, f, days, "")
	case StrategyCategoryBehavior:
		clicks, err = p.behaviorClicks(ctx, f, days, f.Category)
	case StrategyAttribute:
		clicks, err = p.rangeClicks(ctx, days)
		if err == nil {
			clicks, err = p.filterByAttributes(ctx, clicks, f, pred)
		}
	case StrategyAttributeBehavior:
		clicks, err = p.behaviorClicks(ctx, f, days, "")
		if err == nil {
			clicks, err = p.filterByAttributes(ctx, clicks, f, pred)
		}
	}
	if err != nil {
		return nil, err
	}

	return BuildPage(clicks, strategy, f.Page, f.PageSize), nil
}

// resolveDays 解析 Filters 里的日期串并夹取到数据窗口。缺省取窗口内
// 最近 3 天。格式错误在任何存储访问之前返回 INVALID_INPUT。
func (p *Planner) resolveDays(f *Filters) ([]time.Time, error) {
	var start, end time.Time
	var err error
	if f.StartDate != "" {
		if start, err = core.ParseDate(core.ModuleStats, f.StartDate); err != nil {
			return nil, err
		}
	}
	if f.EndDate != "" {
		if end, err = core.ParseDate(core.ModuleStats, f.EndDate); err != nil {
			return nil, err
		}
	}
	return core.DaysBetween(p.Window.ClampStart(start), p.Window.ClampEnd(end)), nil
}

// rangeClicks 聚合日期范围内的全量日榜，一次管道整取。
func (p *Planner) rangeClicks(ctx context.Context, days []time.Time) (core.ClickCountMap, error) {
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = core.DailyRankKey(d)
	}
	return p.mergeBuckets(ctx, keys)
}

// categoryClicks 聚合日期范围内某类别的日榜。
func (p *Planner) categoryClicks(ctx context.Context, category string, days []time.Time) (core.ClickCountMap, error) {
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = core.CategoryDailyRankKey(category, d)
	}
	return p.mergeBuckets(ctx, keys)
}

func (p *Planner) mergeBuckets(ctx context.Context, keys []string) (core.ClickCountMap, error) {
	buckets, err := p.Ranking.BatchRangeDesc(ctx, keys)
	if err != nil {
		return nil, err
	}
	clicks := make(core.ClickCountMap)
	for _, entries := range buckets {
		clicks.MergeEntries(entries)
	}
	return clicks, nil
}

// behaviorClicks 并发取两路独立输入——点击计数（全量或类别日榜）与
// 用户行为候选集——再求交。两路都不依赖对方，串行只会白等一次往返。
func (p *Planner) behaviorClicks(ctx context.Context, f *Filters, days []time.Time, category string) (core.ClickCountMap, error) {
	var clicks core.ClickCountMap
	var candidates map[string]struct{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if category != "" {
			clicks, err = p.categoryClicks(gctx, category, days)
		} else {
			clicks, err = p.rangeClicks(gctx, days)
		}
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = p.behaviorCandidates(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := make(core.ClickCountMap)
	for id, count := range clicks {
		if _, ok := candidates[id]; ok {
			filtered[id] = count
		}
	}
	return filtered, nil
}

// behaviorCandidates 按行为过滤收集候选新闻 ID 集合：
//   - like：用户的已读集合（like 与 dislike 同时给出时 like 优先）
//   - dislike：用户的不喜欢集合
//   - 仅给出用户：已读 ∪ 不喜欢（该用户接触过的全部新闻）
//
// 多用户取并集，全部集合一次管道往返整取。没有用户 ID 时集合为空，
// 交集自然为空结果。
func (p *Planner) behaviorCandidates(ctx context.Context, f *Filters) (map[string]struct{}, error) {
	kinds := make([]core.ExclusionKind, 0, 2)
	switch {
	case f.Like:
		kinds = append(kinds, core.ExclusionSeen)
	case f.Dislike:
		kinds = append(kinds, core.ExclusionDislike)
	default:
		kinds = append(kinds, core.ExclusionSeen, core.ExclusionDislike)
	}

	refs := make([]core.ExclusionRef, 0, len(f.UserIDs)*len(kinds))
	for _, userID := range f.UserIDs {
		for _, kind := range kinds {
			refs = append(refs, core.ExclusionRef{UserID: userID, Kind: kind})
		}
	}
	sets, err := p.Exclusions.BatchMembers(ctx, refs)
	if err != nil {
		return nil, err
	}

	candidates := make(map[string]struct{})
	for _, ids := range sets {
		for _, id := range ids {
			candidates[id] = struct{}{}
		}
	}
	return candidates, nil
}

// filterByAttributes 按元数据逐条过滤点击计数：批量重查关系库属性，
// 缺属性的 ID 直接剔除，其余依次过类别/主题/长度区间/CEL 谓词。
func (p *Planner) filterByAttributes(ctx context.Context, clicks core.ClickCountMap, f *Filters, pred *dsl.AttributePredicate) (core.ClickCountMap, error) {
	if len(clicks) == 0 {
		return clicks, nil
	}
	ids := make([]string, 0, len(clicks))
	for id := range clicks {
		ids = append(ids, id)
	}
	attrs, err := p.Meta.BatchAttributes(ctx, ids)
	if err != nil {
		return nil, err
	}

	filtered := make(core.ClickCountMap)
	for id, count := range clicks {
		attr, ok := attrs[id]
		if !ok || !matchAttributes(attr, f) {
			continue
		}
		match, err := pred.Match(attr)
		if err != nil {
			return nil, err
		}
		if match {
			filtered[id] = count
		}
	}
	return filtered, nil
}

func matchAttributes(attr core.NewsAttributes, f *Filters) bool {
	if f.Category != "" && attr.Category != f.Category {
		return false
	}
	if f.Topic != "" && attr.Topic != f.Topic {
		return false
	}
	if f.TitleLengthMin != nil && int64(attr.HeadlineLength) < *f.TitleLengthMin {
		return false
	}
	if f.TitleLengthMax != nil && int64(attr.HeadlineLength) > *f.TitleLengthMax {
		return false
	}
	if f.ContentLengthMin != nil && int64(attr.BodyLength) < *f.ContentLengthMin {
		return false
	}
	if f.ContentLengthMax != nil && int64(attr.BodyLength) > *f.ContentLengthMax {
		return false
	}
	return true
}
