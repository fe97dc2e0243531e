package core

import (
	"context"
	"sort"
	"time"
)

// InterestProfile 是用户兴趣画像：类别 → 权重。
// 权重由上游管道预计算，本服务只读消费。负权重视为非兴趣信号。
type InterestProfile map[string]float64

// CategoryWeight 是 TopK 切片中的一项。
type CategoryWeight struct {
	Category string
	Weight   float64
}

// TopK 取权重最高的 k 个类别：权重降序，并列按类别名升序。
// 非正权重被丢弃。
func (p InterestProfile) TopK(k int) []CategoryWeight {
	out := make([]CategoryWeight, 0, len(p))
	for cate, w := range p {
		if w <= 0 {
			continue
		}
		out = append(out, CategoryWeight{Category: cate, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Category < out[j].Category
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// InterestStore 是兴趣画像的读取接口。
// 画像不存在时返回空 map 而非错误（空画像是正常业务态）。
type InterestStore interface {
	// Profile 读取用户当前兴趣画像
	Profile(ctx context.Context, userID string) (InterestProfile, error)

	// ProfileAt 读取某日的历史兴趣快照（user_cate_score:{userId}:{yyyymmdd}）
	ProfileAt(ctx context.Context, userID string, day time.Time) (InterestProfile, error)
}
