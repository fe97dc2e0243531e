package newsdb

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PeriodCount 是某个时间段（日或小时）的点击计数。
type PeriodCount struct {
	Period string
	Count  int64
}

// BrowseRecord 是浏览历史的一条记录（点击日志联新闻标题）。
type BrowseRecord struct {
	Timestamp time.Time `json:"timestamp"`
	NewsID    string    `json:"newsId"`
	Category  string    `json:"category"`
	Headline  string    `json:"headline"`
}

// ClickLogRepository 查询 user_clicklog 表。
// 小时粒度的热度序列仍走关系库（榜单只有日桶）。
type ClickLogRepository struct {
	db *pgxpool.Pool
}

func NewClickLogRepository(db *pgxpool.Pool) *ClickLogRepository {
	return &ClickLogRepository{db: db}
}

// CountByHour 返回单条新闻在 [start, end] 内按小时的正向点击计数。
func (r *ClickLogRepository) CountByHour(ctx context.Context, newsID string, start, end time.Time) ([]PeriodCount, error) {
	query, args, err := psql.
		Select("to_char(click_time, 'YYYY-MM-DD HH24') AS period", "COUNT(*) AS count").
		From("user_clicklog").
		Where(sq.Eq{"clicknews_id": newsID, "pos_or_neg": 1}).
		Where(sq.GtOrEq{"click_time": start}).
		Where(sq.LtOrEq{"click_time": end}).
		GroupBy("period").
		OrderBy("period").
		ToSql()
	if err != nil {
		return nil, wrapDB("build hourly query", err)
	}
	return r.periodCounts(ctx, query, args)
}

// CountByHourForCategory 返回某类别在 [start, end] 内按小时的正向点击计数。
func (r *ClickLogRepository) CountByHourForCategory(ctx context.Context, category string, start, end time.Time) ([]PeriodCount, error) {
	query, args, err := psql.
		Select("to_char(uc.click_time, 'YYYY-MM-DD HH24') AS period", "COUNT(*) AS count").
		From("user_clicklog uc").
		Join("static_news sn ON uc.clicknews_id = sn.news_id").
		Where(sq.Eq{"sn.category": category, "uc.pos_or_neg": 1}).
		Where(sq.GtOrEq{"uc.click_time": start}).
		Where(sq.LtOrEq{"uc.click_time": end}).
		GroupBy("period").
		OrderBy("period").
		ToSql()
	if err != nil {
		return nil, wrapDB("build category hourly query", err)
	}
	return r.periodCounts(ctx, query, args)
}

func (r *ClickLogRepository) periodCounts(ctx context.Context, query string, args []interface{}) ([]PeriodCount, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDB("query period counts", err)
	}
	defer rows.Close()
	var out []PeriodCount
	for rows.Next() {
		var pc PeriodCount
		if err := rows.Scan(&pc.Period, &pc.Count); err != nil {
			return nil, wrapDB("scan period count", err)
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("iterate period counts", err)
	}
	return out, nil
}

// BrowseHistory 返回用户点击历史的一页（按点击时间倒序）。
func (r *ClickLogRepository) BrowseHistory(ctx context.Context, userID string, limit, offset int) ([]BrowseRecord, error) {
	query, args, err := psql.
		Select("uc.click_time", "uc.clicknews_id", "sn.category", "sn.headline").
		From("user_clicklog uc").
		Join("static_news sn ON uc.clicknews_id = sn.news_id").
		Where(sq.Eq{"uc.user_id": userID}).
		OrderBy("uc.click_time DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, wrapDB("build browse history query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDB("query browse history", err)
	}
	defer rows.Close()
	var out []BrowseRecord
	for rows.Next() {
		var rec BrowseRecord
		if err := rows.Scan(&rec.Timestamp, &rec.NewsID, &rec.Category, &rec.Headline); err != nil {
			return nil, wrapDB("scan browse history", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("iterate browse history", err)
	}
	return out, nil
}

// CountByUser 返回用户点击总数（浏览历史分页用）。
func (r *ClickLogRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From("user_clicklog").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, wrapDB("build user count query", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, wrapDB("count user clicks", err)
	}
	return total, nil
}
