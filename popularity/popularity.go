// Package popularity 提供热度查询：预计算榜单给日/周/总粒度，
// 小时粒度没有预计算桶，回落到关系库点击日志聚合。
package popularity

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/newsbi/core"
	"github.com/rushteam/newsbi/newsdb"
)

// Period 是榜单的时间粒度。
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
	PeriodAll    Period = "all"
)

// DayCount 是单日热度。
type DayCount struct {
	Day        string `json:"day"` // yyyy-MM-dd
	ClickCount int64  `json:"clickCount"`
}

// HourCount 是单小时热度。
type HourCount struct {
	Hour       string `json:"hour"` // yyyy-MM-dd HH
	ClickCount int64  `json:"clickCount"`
}

// ItemResult 是单条新闻的热度曲线。
type ItemResult struct {
	NewsID string     `json:"newsId"`
	Daily  []DayCount `json:"daily"`
	Hourly []HourCount `json:"hourly,omitempty"`
}

// CategoryHeat 是单个类别在一段日期内的热度曲线。
type CategoryHeat struct {
	Category string      `json:"category"`
	Daily    []DayCount  `json:"daily"`
	Hourly   []HourCount `json:"hourly,omitempty"`
	Total    int64       `json:"total"`
}

// RankedNews 是榜单条目与元数据的联查结果。
type RankedNews struct {
	NewsID     string `json:"newsId"`
	Headline   string `json:"headline"`
	Category   string `json:"category"`
	ClickCount int64  `json:"clickCount"`
}

// ClickSource 是小时粒度点击序列的来源（newsdb.ClickLogRepository）。
// 榜单只有日桶，小时粒度一律回落到点击日志聚合。
type ClickSource interface {
	CountByHour(ctx context.Context, newsID string, start, end time.Time) ([]newsdb.PeriodCount, error)
	CountByHourForCategory(ctx context.Context, category string, start, end time.Time) ([]newsdb.PeriodCount, error)
}

// NewsCatalog 是榜单联查需要的新闻目录子集（newsdb.NewsRepository）。
type NewsCatalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]core.News, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}

// Service 组合榜单存储与点击日志，提供热度查询。
type Service struct {
	Ranking core.RankingStore
	Clicks  ClickSource
	News    NewsCatalog
	Window  core.DataWindow
}

func NewService(ranking core.RankingStore, clicks ClickSource, news NewsCatalog, window core.DataWindow) *Service {
	return &Service{Ranking: ranking, Clicks: clicks, News: news, Window: window}
}

// ItemPopularity 返回单条新闻在 [start, end] 的逐日点击曲线，
// withHours 时附带逐小时曲线。日粒度走日榜的一次管道批查，
// 小时粒度走关系库 GROUP BY。
func (s *Service) ItemPopularity(ctx context.Context, newsID string, start, end time.Time, withHours bool) (*ItemResult, error) {
	start = s.Window.ClampStart(start)
	end = s.Window.ClampEnd(end)
	days := core.DaysBetween(start, end)

	res := &ItemResult{NewsID: newsID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys := make([]string, len(days))
		for i, d := range days {
			keys[i] = core.DailyRankKey(d)
		}
		scores, err := s.Ranking.BatchScoreFor(gctx, keys, newsID)
		if err != nil {
			return err
		}
		daily := make([]DayCount, len(days))
		for i, d := range days {
			daily[i] = DayCount{Day: d.Format("2006-01-02")}
			if scores[i].Found {
				daily[i].ClickCount = int64(scores[i].Value)
			}
		}
		res.Daily = daily
		return nil
	})
	if withHours {
		g.Go(func() error {
			counts, err := s.Clicks.CountByHour(gctx, newsID, start, end.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			hourly := make([]HourCount, len(counts))
			for i, c := range counts {
				hourly[i] = HourCount{Hour: c.Period, ClickCount: c.Count}
			}
			res.Hourly = hourly
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// CategoryPopularity 返回各类别在 [start, end] 的逐日热度，
// withHours 时附带点击日志聚合的逐小时曲线（类别热度榜只有日桶）。
// categories 为空时先从关系库枚举全部类别。每个类别一次管道批查，
// 类别之间并发展开。
func (s *Service) CategoryPopularity(ctx context.Context, categories []string, start, end time.Time, withHours bool) ([]CategoryHeat, error) {
	start = s.Window.ClampStart(start)
	end = s.Window.ClampEnd(end)
	days := core.DaysBetween(start, end)

	if len(categories) == 0 {
		var err error
		if categories, err = s.News.DistinctCategories(ctx); err != nil {
			return nil, err
		}
	}

	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = core.CategoryHeatKey(d)
	}

	out := make([]CategoryHeat, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			scores, err := s.Ranking.BatchScoreFor(gctx, keys, category)
			if err != nil {
				return err
			}
			heat := CategoryHeat{Category: category, Daily: make([]DayCount, len(days))}
			for j, d := range days {
				heat.Daily[j] = DayCount{Day: d.Format("2006-01-02")}
				if scores[j].Found {
					heat.Daily[j].ClickCount = int64(scores[j].Value)
					heat.Total += int64(scores[j].Value)
				}
			}
			if withHours {
				counts, err := s.Clicks.CountByHourForCategory(gctx, category, start, end.AddDate(0, 0, 1))
				if err != nil {
					return err
				}
				heat.Hourly = make([]HourCount, len(counts))
				for j, c := range counts {
					heat.Hourly[j] = HourCount{Hour: c.Period, ClickCount: c.Count}
				}
			}
			out[i] = heat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// TopRanked 返回某粒度榜单的前 topN 条并联查元数据。
// 榜单顺序保持 Redis 返回顺序；关系库缺元数据的 ID 剔除。
//
//   - daily：asOf 当日榜（夹取到数据窗口）
//   - weekly：asOf 所在 ISO 周榜
//   - all：总榜
func (s *Service) TopRanked(ctx context.Context, period Period, asOf time.Time, topN int) ([]RankedNews, error) {
	if topN <= 0 {
		topN = 10
	}
	day := s.Window.ClampEnd(asOf)

	var key string
	switch period {
	case PeriodDaily:
		key = core.DailyRankKey(day)
	case PeriodWeekly:
		key = core.WeeklyRankKey(day)
	case PeriodAll:
		key = core.AllTimeRankKey()
	default:
		return nil, core.NewDomainError(core.ModuleRanking, core.ErrorCodeInvalidInput,
			"period must be daily, weekly or all")
	}

	entries, err := s.Ranking.RangeDesc(ctx, key, 0, int64(topN))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []RankedNews{}, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Member
	}
	news, err := s.News.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RankedNews, 0, len(entries))
	for _, e := range entries {
		n, ok := news[e.Member]
		if !ok {
			continue
		}
		out = append(out, RankedNews{
			NewsID:     e.Member,
			Headline:   n.Headline,
			Category:   n.Category,
			ClickCount: int64(e.Score),
		})
	}
	return out, nil
}
