package core

import (
	"context"
	"sort"
)

// RankingEntry 是排行榜中的一条记录：成员 ID 与分数（点击数）。
type RankingEntry struct {
	Member string
	Score  float64
}

// Score 是单次分数查询的结果；Found 为 false 表示成员不在榜中。
type Score struct {
	Value float64
	Found bool
}

// RankingStore 是按时间分桶的排行榜存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 多 key 读取必须是一次管道往返，绝不允许 N 个 key N 次往返
//   - 日期范围的 key 枚举由调用方完成（DaysBetween）
//
// RangeDesc 的并列分数顺序由后端默认规则决定（Redis ZREVRANGE：
// 成员按字典序降序；MemoryStore 保持一致）。统计链路的共享排序尾部
// 有自己的确定性比较器，不依赖此顺序。
type RankingStore interface {
	// ScoreFor 查询单个成员在某桶中的分数
	ScoreFor(ctx context.Context, bucketKey, member string) (Score, error)

	// RangeDesc 按分数降序读取 [offset, offset+count) 的成员；count<0 表示读到末尾
	RangeDesc(ctx context.Context, bucketKey string, offset, count int64) ([]RankingEntry, error)

	// BatchScoreFor 一次管道往返查询同一成员在多个桶中的分数，
	// 结果顺序与 key 顺序一致；连接错误使整批失败（UNAVAILABLE）
	BatchScoreFor(ctx context.Context, bucketKeys []string, member string) ([]Score, error)

	// BatchRangeDesc 一次管道往返整取多个桶，用于跨日聚合
	BatchRangeDesc(ctx context.Context, bucketKeys []string) ([][]RankingEntry, error)
}

// WeightedBucket 是带权重的榜单桶，推荐合并的输入。
type WeightedBucket struct {
	Key    string
	Weight float64
}

// RecommendMerger 是推荐合并的原子操作：对若干带权类别日榜做加权合并，
// 去掉两个排除集合中的成员，返回合并分降序的前 topN 个成员 ID
// （并列按成员 ID 升序）。
//
// 原子性要求：整个计算必须是对存储的单次不可分操作（Redis 实现为一次
// Lua EVAL），兴趣画像/排除集合/榜单可能被摄取管道并发更新，客户端
// 先读后算会引入竞态窗口。
type RecommendMerger interface {
	RecommendMerge(ctx context.Context, buckets []WeightedBucket, seenKey, dislikeKey string, topN int) ([]string, error)
}

// ClickCountMap 是请求作用域的 新闻ID→累计点击 映射，
// 榜单读取与关系库读取之间的公共中间形态。
type ClickCountMap map[string]int64

// Add 累加一条点击计数。
func (m ClickCountMap) Add(member string, count int64) {
	m[member] += count
}

// MergeEntries 将一组榜单记录累加进来。
func (m ClickCountMap) MergeEntries(entries []RankingEntry) {
	for _, e := range entries {
		m[e.Member] += int64(e.Score)
	}
}

// Merge 合并另一张计数表，重叠 key 求和。
func (m ClickCountMap) Merge(other ClickCountMap) {
	for k, v := range other {
		m[k] += v
	}
}

// Total 返回全部计数之和（分页前的全量口径）。
func (m ClickCountMap) Total() int64 {
	var sum int64
	for _, v := range m {
		sum += v
	}
	return sum
}

// Sorted 返回按点击数降序、新闻 ID 升序的确定性排序结果。
func (m ClickCountMap) Sorted() []RankingEntry {
	out := make([]RankingEntry, 0, len(m))
	for k, v := range m {
		out = append(out, RankingEntry{Member: k, Score: float64(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Member < out[j].Member
	})
	return out
}
