package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/newsbi/core"
)

// RedisStore 是 Redis 实现的排行榜/画像/排除集合存储。
// 所有多 key 读取都走一次 Pipeline 往返；本服务对这三类数据只读。
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, core.WrapDomainError(core.ModuleRanking, core.ErrorCodeUnavailable, "redis ping failed", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Close() error { return r.client.Close() }

// ScoreFor 查询单个成员分数。成员不在榜中不是错误。
func (r *RedisStore) ScoreFor(ctx context.Context, bucketKey, member string) (core.Score, error) {
	val, err := r.client.ZScore(ctx, bucketKey, member).Result()
	if errors.Is(err, redis.Nil) {
		return core.Score{}, nil
	}
	if err != nil {
		return core.Score{}, unavailable("zscore failed", err)
	}
	return core.Score{Value: val, Found: true}, nil
}

// RangeDesc 按分数降序读取。并列分数按 Redis 默认（成员字典序降序）。
func (r *RedisStore) RangeDesc(ctx context.Context, bucketKey string, offset, count int64) ([]core.RankingEntry, error) {
	stop := int64(-1)
	if count >= 0 {
		stop = offset + count - 1
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, bucketKey, offset, stop).Result()
	if err != nil {
		return nil, unavailable("zrevrange failed", err)
	}
	return toEntries(zs), nil
}

// BatchScoreFor 一次管道往返查询多个桶。结果顺序与 key 顺序一致；
// 任何连接级错误使整批失败并以 UNAVAILABLE 上抛，绝不部分成功。
func (r *RedisStore) BatchScoreFor(ctx context.Context, bucketKeys []string, member string) ([]core.Score, error) {
	if len(bucketKeys) == 0 {
		return nil, nil
	}
	pipe := r.client.Pipeline()
	cmds := make([]*redis.FloatCmd, len(bucketKeys))
	for i, key := range bucketKeys {
		cmds[i] = pipe.ZScore(ctx, key, member)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, unavailable("pipelined zscore failed", err)
	}
	out := make([]core.Score, len(bucketKeys))
	for i, cmd := range cmds {
		val, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, unavailable("pipelined zscore failed", err)
		}
		out[i] = core.Score{Value: val, Found: true}
	}
	return out, nil
}

// BatchRangeDesc 一次管道往返整取多个桶（ZREVRANGE 0 -1 WITHSCORES）。
func (r *RedisStore) BatchRangeDesc(ctx context.Context, bucketKeys []string) ([][]core.RankingEntry, error) {
	if len(bucketKeys) == 0 {
		return nil, nil
	}
	pipe := r.client.Pipeline()
	cmds := make([]*redis.ZSliceCmd, len(bucketKeys))
	for i, key := range bucketKeys {
		cmds[i] = pipe.ZRevRangeWithScores(ctx, key, 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, unavailable("pipelined zrevrange failed", err)
	}
	out := make([][]core.RankingEntry, len(bucketKeys))
	for i, cmd := range cmds {
		zs, err := cmd.Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, unavailable("pipelined zrevrange failed", err)
		}
		out[i] = toEntries(zs)
	}
	return out, nil
}

// Profile 读取兴趣画像（HGETALL）。画像不存在返回空 map。
func (r *RedisStore) Profile(ctx context.Context, userID string) (core.InterestProfile, error) {
	return r.readProfile(ctx, core.InterestKey(userID))
}

// ProfileAt 读取某日的历史兴趣快照。
func (r *RedisStore) ProfileAt(ctx context.Context, userID string, day time.Time) (core.InterestProfile, error) {
	return r.readProfile(ctx, core.InterestSnapshotKey(userID, day))
}

func (r *RedisStore) readProfile(ctx context.Context, key string) (core.InterestProfile, error) {
	raw, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleInterest, core.ErrorCodeUnavailable, "hgetall failed", err)
	}
	profile := make(core.InterestProfile, len(raw))
	for cate, val := range raw {
		w, err := strconv.ParseFloat(val, 64)
		if err != nil {
			continue // 脏数据跳过
		}
		profile[cate] = w
	}
	return profile, nil
}

// Members 读取排除集合成员（SMEMBERS）。
func (r *RedisStore) Members(ctx context.Context, userID string, kind core.ExclusionKind) ([]string, error) {
	members, err := r.client.SMembers(ctx, exclusionKey(userID, kind)).Result()
	if err != nil {
		return nil, unavailable("smembers failed", err)
	}
	return members, nil
}

// BatchMembers 一次管道往返读取多个排除集合，结果顺序与 refs 一致。
func (r *RedisStore) BatchMembers(ctx context.Context, refs []core.ExclusionRef) ([][]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(refs))
	for i, ref := range refs {
		cmds[i] = pipe.SMembers(ctx, exclusionKey(ref.UserID, ref.Kind))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, unavailable("pipelined smembers failed", err)
	}
	out := make([][]string, len(refs))
	for i, cmd := range cmds {
		members, err := cmd.Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, unavailable("pipelined smembers failed", err)
		}
		out[i] = members
	}
	return out, nil
}

func exclusionKey(userID string, kind core.ExclusionKind) string {
	if kind == core.ExclusionDislike {
		return core.DislikeKey(userID)
	}
	return core.SeenKey(userID)
}

func toEntries(zs []redis.Z) []core.RankingEntry {
	out := make([]core.RankingEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, core.RankingEntry{Member: member, Score: z.Score})
	}
	return out
}

func unavailable(msg string, err error) error {
	return core.WrapDomainError(core.ModuleRanking, core.ErrorCodeUnavailable, msg, err)
}

var (
	_ core.RankingStore    = (*RedisStore)(nil)
	_ core.InterestStore   = (*RedisStore)(nil)
	_ core.ExclusionStore  = (*RedisStore)(nil)
	_ core.RecommendMerger = (*RedisStore)(nil)
)
