package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rushteam/newsbi/core"
)

// MemoryStore 是内存实现，用于测试/开发/原型。
// 语义与 RedisStore 对齐：RangeDesc 并列分数按成员字典序降序，
// RecommendMerge 在一把锁内完成（对应 Redis 的单次 EVAL）。
type MemoryStore struct {
	mu     sync.RWMutex
	zsets  map[string]map[string]float64 // zset key -> member -> score
	sets   map[string]map[string]struct{}
	hashes map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		zsets:  make(map[string]map[string]float64),
		sets:   make(map[string]map[string]struct{}),
		hashes: make(map[string]map[string]string),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Close() error { return nil }

// SeedRanking 写入榜单数据（仅供测试与本地开发造数）。
func (m *MemoryStore) SeedRanking(bucketKey, member string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.zsets[bucketKey] == nil {
		m.zsets[bucketKey] = make(map[string]float64)
	}
	m.zsets[bucketKey][member] = score
}

// SeedSet 写入集合成员（仅供测试与本地开发造数）。
func (m *MemoryStore) SeedSet(key string, members ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]struct{})
	}
	for _, member := range members {
		m.sets[key][member] = struct{}{}
	}
}

// SeedInterest 写入兴趣画像（仅供测试与本地开发造数）。
func (m *MemoryStore) SeedInterest(key string, weights map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	for cate, w := range weights {
		m.hashes[key][cate] = strconv.FormatFloat(w, 'f', -1, 64)
	}
}

func (m *MemoryStore) ScoreFor(ctx context.Context, bucketKey, member string) (core.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	score, ok := m.zsets[bucketKey][member]
	if !ok {
		return core.Score{}, nil
	}
	return core.Score{Value: score, Found: true}, nil
}

func (m *MemoryStore) RangeDesc(ctx context.Context, bucketKey string, offset, count int64) ([]core.RankingEntry, error) {
	m.mu.RLock()
	entries := rankDesc(m.zsets[bucketKey])
	m.mu.RUnlock()

	if offset >= int64(len(entries)) {
		return nil, nil
	}
	entries = entries[offset:]
	if count >= 0 && count < int64(len(entries)) {
		entries = entries[:count]
	}
	return entries, nil
}

func (m *MemoryStore) BatchScoreFor(ctx context.Context, bucketKeys []string, member string) ([]core.Score, error) {
	out := make([]core.Score, len(bucketKeys))
	for i, key := range bucketKeys {
		s, err := m.ScoreFor(ctx, key, member)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (m *MemoryStore) BatchRangeDesc(ctx context.Context, bucketKeys []string) ([][]core.RankingEntry, error) {
	out := make([][]core.RankingEntry, len(bucketKeys))
	for i, key := range bucketKeys {
		entries, err := m.RangeDesc(ctx, key, 0, -1)
		if err != nil {
			return nil, err
		}
		out[i] = entries
	}
	return out, nil
}

func (m *MemoryStore) Profile(ctx context.Context, userID string) (core.InterestProfile, error) {
	return m.readProfile(core.InterestKey(userID)), nil
}

func (m *MemoryStore) ProfileAt(ctx context.Context, userID string, day time.Time) (core.InterestProfile, error) {
	return m.readProfile(core.InterestSnapshotKey(userID, day)), nil
}

func (m *MemoryStore) readProfile(key string) core.InterestProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile := make(core.InterestProfile, len(m.hashes[key]))
	for cate, val := range m.hashes[key] {
		if w, err := strconv.ParseFloat(val, 64); err == nil {
			profile[cate] = w
		}
	}
	return profile
}

func (m *MemoryStore) Members(ctx context.Context, userID string, kind core.ExclusionKind) ([]string, error) {
	var key string
	switch kind {
	case core.ExclusionDislike:
		key = core.DislikeKey(userID)
	default:
		key = core.SeenKey(userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		out = append(out, member)
	}
	sort.Strings(out)
	return out, nil
}

// BatchMembers 逐个读取（内存实现没有往返可省），结果顺序与 refs 一致。
func (m *MemoryStore) BatchMembers(ctx context.Context, refs []core.ExclusionRef) ([][]string, error) {
	out := make([][]string, len(refs))
	for i, ref := range refs {
		members, err := m.Members(ctx, ref.UserID, ref.Kind)
		if err != nil {
			return nil, err
		}
		out[i] = members
	}
	return out, nil
}

// RecommendMerge 与 Redis 脚本同语义：加权合并、剔除排除集合、
// 合并分降序取 topN，并列按成员 ID 升序。一把锁内完成。
func (m *MemoryStore) RecommendMerge(ctx context.Context, buckets []core.WeightedBucket, seenKey, dislikeKey string, topN int) ([]string, error) {
	if len(buckets) == 0 || topN <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	merged := make(map[string]float64)
	for _, b := range buckets {
		for member, score := range m.zsets[b.Key] {
			merged[member] += score * b.Weight
		}
	}
	for _, key := range []string{seenKey, dislikeKey} {
		for member := range m.sets[key] {
			delete(merged, member)
		}
	}

	ranked := make([]core.RankingEntry, 0, len(merged))
	for member, score := range merged {
		ranked = append(ranked, core.RankingEntry{Member: member, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Member < ranked[j].Member
	})
	if topN < len(ranked) {
		ranked = ranked[:topN]
	}
	out := make([]string, len(ranked))
	for i, e := range ranked {
		out[i] = e.Member
	}
	return out, nil
}

// rankDesc 按分数降序排序；并列分数按成员字典序降序，与 Redis
// ZREVRANGE 的并列顺序保持一致。
func rankDesc(zset map[string]float64) []core.RankingEntry {
	entries := make([]core.RankingEntry, 0, len(zset))
	for member, score := range zset {
		entries = append(entries, core.RankingEntry{Member: member, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Member > entries[j].Member
	})
	return entries
}

var (
	_ core.RankingStore    = (*MemoryStore)(nil)
	_ core.InterestStore   = (*MemoryStore)(nil)
	_ core.ExclusionStore  = (*MemoryStore)(nil)
	_ core.RecommendMerger = (*MemoryStore)(nil)
)
