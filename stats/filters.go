// Package stats 实现新闻点击统计的查询规划：按激活的过滤维度从六种
// 执行策略中选一种，融合榜单存储与关系库的部分结果，统一排序分页。
package stats

import "strings"

// 参数限制常量（与历史数据口径一致）。
const (
	titleLengthMin   = 0
	titleLengthMax   = 250
	contentLengthMin = 0
	contentLengthMax = 240000

	defaultPage     = 1
	defaultPageSize = 20
	pageSizeMax     = 100
)

// Filters 是统计查询的过滤条件集合。
//
// 参数处理约定：
//   - 字符串参数："null"、"undefined"、空串都视为无过滤
//   - Like/Dislike：只有显式 true 才启用过滤，false 与缺省同义
//     （沿用线上观察到的行为，没有反向过滤）
type Filters struct {
	Category         string
	Topic            string
	TitleLengthMin   *int64
	TitleLengthMax   *int64
	ContentLengthMin *int64
	ContentLengthMax *int64

	UserIDs []string
	Like    bool
	Dislike bool

	StartDate string // yyyy-MM-dd，空串取默认
	EndDate   string

	Page     int
	PageSize int

	// Expr 是可选的 CEL 属性谓词（news.topic == "soccer" 之类），
	// 非空时按属性过滤参与策略分类
	Expr string
}

// Normalize 原地规范化：清洗字符串、夹取长度与分页范围、交换倒置的
// min/max。可重复调用。
func (f *Filters) Normalize() {
	f.Category = normalizeParam(f.Category)
	f.Topic = normalizeParam(f.Topic)
	f.Expr = strings.TrimSpace(f.Expr)

	userIDs := f.UserIDs[:0]
	for _, id := range f.UserIDs {
		if id = normalizeParam(id); id != "" {
			userIDs = append(userIDs, id)
		}
	}
	f.UserIDs = userIDs

	clampRange(&f.TitleLengthMin, &f.TitleLengthMax, titleLengthMin, titleLengthMax)
	clampRange(&f.ContentLengthMin, &f.ContentLengthMax, contentLengthMin, contentLengthMax)

	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > pageSizeMax {
		f.PageSize = pageSizeMax
	}
}

// normalizeParam 将 "null"、"undefined"、空白串统一为空串。
func normalizeParam(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "undefined") {
		return ""
	}
	return s
}

func clampRange(min, max **int64, lo, hi int64) {
	clamp := func(p *int64) *int64 {
		if p == nil {
			return nil
		}
		v := *p
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		return &v
	}
	*min = clamp(*min)
	*max = clamp(*max)
	if *min != nil && *max != nil && **min > **max {
		*min, *max = *max, *min
	}
}

// hasBehaviorFilter 判断是否有行为过滤（用户/喜欢/不喜欢）。
func (f *Filters) hasBehaviorFilter() bool {
	return len(f.UserIDs) > 0 || f.Like || f.Dislike
}

// hasOtherAttributeFilter 判断是否有类别之外的属性过滤。
func (f *Filters) hasOtherAttributeFilter() bool {
	return f.Topic != "" ||
		f.TitleLengthMin != nil || f.TitleLengthMax != nil ||
		f.ContentLengthMin != nil || f.ContentLengthMax != nil ||
		f.Expr != ""
}
