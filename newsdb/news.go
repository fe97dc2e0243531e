// Package newsdb 是关系库（Postgres）访问层：static_news 元数据与
// user_clicklog 点击日志的只读查询。动态条件用 squirrel 拼接。
package newsdb

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rushteam/newsbi/core"
)

// attributeBatchSize 是批量 IN 查询的分片大小，避免 IN 子句过长。
const attributeBatchSize = 1000

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NewsRepository 查询 static_news 表。
type NewsRepository struct {
	db *pgxpool.Pool
}

func NewNewsRepository(db *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{db: db}
}

var _ core.MetadataLookup = (*NewsRepository)(nil)

// BatchAttributes 分片批量取统计过滤属性；缺失的 id 不出现在结果里。
func (r *NewsRepository) BatchAttributes(ctx context.Context, ids []string) (map[string]core.NewsAttributes, error) {
	result := make(map[string]core.NewsAttributes, len(ids))
	for start := 0; start < len(ids); start += attributeBatchSize {
		end := start + attributeBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := r.attributeBatch(ctx, ids[start:end], result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *NewsRepository) attributeBatch(ctx context.Context, ids []string, into map[string]core.NewsAttributes) error {
	query, args, err := psql.
		Select("news_id", "category", "topic", "headline_length", "body_length").
		From("static_news").
		Where(sq.Eq{"news_id": ids}).
		ToSql()
	if err != nil {
		return wrapDB("build attribute query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return wrapDB("query news attributes", err)
	}
	defer rows.Close()
	for rows.Next() {
		var attr core.NewsAttributes
		if err := rows.Scan(&attr.NewsID, &attr.Category, &attr.Topic, &attr.HeadlineLength, &attr.BodyLength); err != nil {
			return wrapDB("scan news attributes", err)
		}
		into[attr.NewsID] = attr
	}
	if err := rows.Err(); err != nil {
		return wrapDB("iterate news attributes", err)
	}
	return nil
}

// FindByIDs 批量取展示字段；缺失的 id 不出现在结果里。
func (r *NewsRepository) FindByIDs(ctx context.Context, ids []string) (map[string]core.News, error) {
	if len(ids) == 0 {
		return map[string]core.News{}, nil
	}
	query, args, err := psql.
		Select("news_id", "category", "topic", "headline", "publish_time").
		From("static_news").
		Where(sq.Eq{"news_id": ids}).
		ToSql()
	if err != nil {
		return nil, wrapDB("build find query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDB("query news", err)
	}
	defer rows.Close()
	result := make(map[string]core.News, len(ids))
	for rows.Next() {
		var n core.News
		if err := rows.Scan(&n.ID, &n.Category, &n.Topic, &n.Headline, &n.PublishTime); err != nil {
			return nil, wrapDB("scan news", err)
		}
		result[n.ID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("iterate news", err)
	}
	return result, nil
}

// Detail 取单条新闻全文，未命中返回 NOT_FOUND。
func (r *NewsRepository) Detail(ctx context.Context, id string) (*core.News, error) {
	query, args, err := psql.
		Select("news_id", "category", "topic", "headline", "body", "publish_time").
		From("static_news").
		Where(sq.Eq{"news_id": id}).
		ToSql()
	if err != nil {
		return nil, wrapDB("build detail query", err)
	}
	var n core.News
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&n.ID, &n.Category, &n.Topic, &n.Headline, &n.Body, &n.PublishTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewDomainError(core.ModuleNewsDB, core.ErrorCodeNotFound, "news not found")
		}
		return nil, wrapDB("query news detail", err)
	}
	return &n, nil
}

// SearchParams 是列表查询的过滤条件。
type SearchParams struct {
	Category   string
	Topic      string
	SearchText string // 标题模糊匹配（ILIKE）
	Page       int
	PageSize   int
	SortAsc    bool // 按 publish_time 排序方向
}

// SearchResult 是列表查询结果。
type SearchResult struct {
	Items []core.News `json:"items"`
	Total int64       `json:"total"`
}

// Search 分页查询新闻列表。
func (r *NewsRepository) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}

	where := sq.And{}
	if p.Category != "" {
		where = append(where, sq.Eq{"category": p.Category})
	}
	if p.Topic != "" {
		where = append(where, sq.Eq{"topic": p.Topic})
	}
	if p.SearchText != "" {
		where = append(where, sq.ILike{"headline": "%" + p.SearchText + "%"})
	}

	countQuery := psql.Select("COUNT(*)").From("static_news")
	listQuery := psql.Select("news_id", "category", "topic", "headline", "publish_time").From("static_news")
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
		listQuery = listQuery.Where(where)
	}

	query, args, err := countQuery.ToSql()
	if err != nil {
		return nil, wrapDB("build count query", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, wrapDB("count news", err)
	}

	order := "publish_time DESC"
	if p.SortAsc {
		order = "publish_time ASC"
	}
	query, args, err = listQuery.
		OrderBy(order).
		Limit(uint64(p.PageSize)).
		Offset(uint64((p.Page - 1) * p.PageSize)).
		ToSql()
	if err != nil {
		return nil, wrapDB("build list query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDB("query news list", err)
	}
	defer rows.Close()
	items := make([]core.News, 0, p.PageSize)
	for rows.Next() {
		var n core.News
		if err := rows.Scan(&n.ID, &n.Category, &n.Topic, &n.Headline, &n.PublishTime); err != nil {
			return nil, wrapDB("scan news list", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("iterate news list", err)
	}
	return &SearchResult{Items: items, Total: total}, nil
}

// DistinctCategories 返回全部类别名。
func (r *NewsRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM static_news ORDER BY category`)
	if err != nil {
		return nil, wrapDB("query categories", err)
	}
	defer rows.Close()
	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, wrapDB("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("iterate categories", err)
	}
	return categories, nil
}

func wrapDB(msg string, err error) error {
	return core.WrapDomainError(core.ModuleNewsDB, core.ErrorCodeUnavailable, msg, err)
}
