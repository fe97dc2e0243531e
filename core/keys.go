package core

import (
	"fmt"
	"time"
)

// Redis key 形状是与上游摄取任务的兼容约定，必须逐字节保持一致。
const (
	keyDailyRankPrefix    = "news_hot_rank_daily"
	keyWeeklyRankPrefix   = "news_hot_rank_weekly"
	keyAllTimeRank        = "news_hot_rank_all"
	keyCategoryHeatPrefix = "cate_hot_rank_daily"
	keyInterestPrefix     = "user_cate_score"
	keySeenPrefix         = "user_seen_news"
	keyDislikePrefix      = "user_dislike_news"

	dayLayout       = "20060102"
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// DailyRankKey 返回全量日榜 key：news_hot_rank_daily:{yyyymmdd}。
func DailyRankKey(day time.Time) string {
	return keyDailyRankPrefix + ":" + day.Format(dayLayout)
}

// CategoryDailyRankKey 返回类别日榜 key：news_hot_rank_daily:{category}:{yyyymmdd}。
func CategoryDailyRankKey(category string, day time.Time) string {
	return keyDailyRankPrefix + ":" + category + ":" + day.Format(dayLayout)
}

// WeeklyRankKey 返回周榜 key：news_hot_rank_weekly:{isoYear}{isoWeek}。
// 周编号按 ISO-8601 计算，两位补零。
func WeeklyRankKey(day time.Time) string {
	year, week := day.ISOWeek()
	return fmt.Sprintf("%s:%04d%02d", keyWeeklyRankPrefix, year, week)
}

// AllTimeRankKey 返回总榜 key：news_hot_rank_all。
func AllTimeRankKey() string { return keyAllTimeRank }

// CategoryHeatKey 返回类别热度日榜 key：cate_hot_rank_daily:{yyyymmdd}。
// member 为类别名，score 为该类别当日总点击。
func CategoryHeatKey(day time.Time) string {
	return keyCategoryHeatPrefix + ":" + day.Format(dayLayout)
}

// InterestKey 返回兴趣画像 key：user_cate_score:{userId}。
func InterestKey(userID string) string { return keyInterestPrefix + ":" + userID }

// InterestSnapshotKey 返回历史兴趣快照 key：user_cate_score:{userId}:{yyyymmdd}。
func InterestSnapshotKey(userID string, day time.Time) string {
	return keyInterestPrefix + ":" + userID + ":" + day.Format(dayLayout)
}

// SeenKey 返回已读集合 key：user_seen_news:{userId}。
func SeenKey(userID string) string { return keySeenPrefix + ":" + userID }

// DislikeKey 返回不喜欢集合 key：user_dislike_news:{userId}。
func DislikeKey(userID string) string { return keyDislikePrefix + ":" + userID }

// DaysBetween 枚举 [start, end] 的每个自然日（按日零点）。
// start 在 end 之后时返回空。调用方用它生成 key 列表后走一次管道批量读，
// 而不是逐日往返。
func DaysBetween(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate 解析 yyyy-MM-dd 日期，格式错误返回 INVALID_INPUT。
func ParseDate(module, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, WrapDomainError(module, ErrorCodeInvalidInput,
			fmt.Sprintf("invalid date %q (expect: yyyy-MM-dd)", s), err)
	}
	return t, nil
}

// ParseDay 解析 yyyyMMdd 紧凑日期，格式错误返回 INVALID_INPUT。
func ParseDay(module, s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, WrapDomainError(module, ErrorCodeInvalidInput,
			fmt.Sprintf("invalid date %q (expect: yyyyMMdd)", s), err)
	}
	return t, nil
}

// ParseTimestamp 解析 yyyy-MM-dd HH:mm:ss 时间戳，格式错误返回 INVALID_INPUT。
func ParseTimestamp(module, s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, WrapDomainError(module, ErrorCodeInvalidInput,
			fmt.Sprintf("invalid timestamp %q (expect: yyyy-MM-dd HH:mm:ss)", s), err)
	}
	return t, nil
}

// DataWindow 是数据集的有效日期范围。范围之外的日期一律夹取到边界，不拒绝。
type DataWindow struct {
	Min time.Time
	Max time.Time
}

// ClampStart 夹取开始日期；零值取窗口内最近 3 天的起点。
func (w DataWindow) ClampStart(t time.Time) time.Time {
	if t.IsZero() {
		return w.Max.AddDate(0, 0, -2)
	}
	if t.Before(w.Min) {
		return w.Min
	}
	if t.After(w.Max) {
		return w.Max
	}
	return t
}

// ClampEnd 夹取结束日期；零值取窗口上界。
func (w DataWindow) ClampEnd(t time.Time) time.Time {
	if t.IsZero() || t.After(w.Max) {
		return w.Max
	}
	if t.Before(w.Min) {
		return w.Min
	}
	return t
}
