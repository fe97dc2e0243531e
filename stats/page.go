package stats

import "github.com/rushteam/newsbi/core"

// NewsStat 是单条新闻的点击统计。
type NewsStat struct {
	NewsID     string `json:"newsId"`
	ClickCount int64  `json:"clickCount"`
}

// Result 是统计查询的分页结果。TotalClicks 统计过滤后的全量点击，
// 与当前页无关。
type Result struct {
	Strategy    string     `json:"strategy"`
	TotalClicks int64      `json:"totalClicks"`
	TotalNews   int        `json:"totalNews"`
	TotalPages  int        `json:"totalPages"`
	Page        int        `json:"page"`
	PageSize    int        `json:"pageSize"`
	NewsStats   []NewsStat `json:"newsStats"`
}

// BuildPage 对过滤后的点击计数做统一收尾：按次数降序（同次数按
// 新闻 ID 升序）排序，计算总量后切出目标页。页码越界返回空页。
func BuildPage(clicks core.ClickCountMap, strategy Strategy, page, pageSize int) *Result {
	sorted := clicks.Sorted()
	res := &Result{
		Strategy:    strategy.String(),
		TotalClicks: clicks.Total(),
		TotalNews:   len(sorted),
		TotalPages:  (len(sorted) + pageSize - 1) / pageSize,
		Page:        page,
		PageSize:    pageSize,
		NewsStats:   []NewsStat{},
	}

	lo := (page - 1) * pageSize
	if lo >= len(sorted) {
		return res
	}
	hi := lo + pageSize
	if hi > len(sorted) {
		hi = len(sorted)
	}
	for _, e := range sorted[lo:hi] {
		res.NewsStats = append(res.NewsStats, NewsStat{NewsID: e.Member, ClickCount: int64(e.Score)})
	}
	return res
}
