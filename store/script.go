package store

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/newsbi/core"
)

// recommendScript 在服务端一次完成：类别日榜加权合并 → 去掉两个排除
// 集合中的成员 → 合并分降序取前 topN（并列按成员 ID 升序）。
//
// KEYS[1..n-2] 类别日榜，KEYS[n-1] 已读集合，KEYS[n] 不喜欢集合；
// ARGV[1..n-2] 对应权重，ARGV[n-1] topN。
//
// 单次 EVAL 即单个不可分操作，不落临时 key，榜单与排除集合被摄取
// 管道并发更新也不会出现先读后算的竞态窗口。
var recommendScript = redis.NewScript(`
local nbuckets = #KEYS - 2
local topn = tonumber(ARGV[nbuckets + 1])
local scores = {}
for i = 1, nbuckets do
  local weight = tonumber(ARGV[i])
  local entries = redis.call('ZRANGE', KEYS[i], 0, -1, 'WITHSCORES')
  for j = 1, #entries, 2 do
    local member = entries[j]
    local score = tonumber(entries[j + 1])
    scores[member] = (scores[member] or 0) + score * weight
  end
end
for i = nbuckets + 1, nbuckets + 2 do
  local excluded = redis.call('SMEMBERS', KEYS[i])
  for _, member in ipairs(excluded) do
    scores[member] = nil
  end
end
local ranked = {}
for member, score in pairs(scores) do
  ranked[#ranked + 1] = {member, score}
end
table.sort(ranked, function(a, b)
  if a[2] ~= b[2] then return a[2] > b[2] end
  return a[1] < b[1]
end)
local out = {}
for i = 1, math.min(topn, #ranked) do
  out[#out + 1] = ranked[i][1]
end
return out
`)

// RecommendMerge 执行推荐合并脚本。
func (r *RedisStore) RecommendMerge(ctx context.Context, buckets []core.WeightedBucket, seenKey, dislikeKey string, topN int) ([]string, error) {
	if len(buckets) == 0 || topN <= 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(buckets)+2)
	argv := make([]interface{}, 0, len(buckets)+1)
	for _, b := range buckets {
		keys = append(keys, b.Key)
		argv = append(argv, strconv.FormatFloat(b.Weight, 'f', -1, 64))
	}
	keys = append(keys, seenKey, dislikeKey)
	argv = append(argv, strconv.Itoa(topN))

	raw, err := recommendScript.Run(ctx, r.client, keys, argv...).StringSlice()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleRecommend, core.ErrorCodeUnavailable, "recommend script failed", err)
	}
	return raw, nil
}
