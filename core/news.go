package core

import (
	"context"
	"time"
)

// NewsAttributes 是统计过滤用的不可变新闻属性子集。
// 始终批量重查关系库，本核心不做跨请求缓存。
type NewsAttributes struct {
	NewsID         string
	Category       string
	Topic          string
	HeadlineLength int
	BodyLength     int
}

// News 是新闻条目的展示字段（列表/详情/榜单联查）。
type News struct {
	ID          string    `json:"newsId"`
	Category    string    `json:"category"`
	Topic       string    `json:"topic"`
	Headline    string    `json:"headline"`
	Body        string    `json:"body,omitempty"`
	PublishTime time.Time `json:"publishTime"`
}

// MetadataLookup 是关系库的批量属性查询接口（外部协作方，只读）。
type MetadataLookup interface {
	// BatchAttributes 批量取属性；缺失的 id 不出现在结果里
	BatchAttributes(ctx context.Context, ids []string) (map[string]NewsAttributes, error)

	// FindByIDs 批量取展示字段；缺失的 id 不出现在结果里
	FindByIDs(ctx context.Context, ids []string) (map[string]News, error)
}
