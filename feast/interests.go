// Package feast 提供基于 Feast 特征服务的兴趣画像读取实现，
// 作为 Redis Hash 画像源的替代部署形态（特征平台统一托管画像时启用）。
package feast

import (
	"context"
	"fmt"
	"strings"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/newsbi/core"
)

// InterestStore 通过 Feast Serving 的在线特征接口读取用户兴趣画像。
//
// 特征引用约定为 "<feature_table>:<category>"，每个类别权重是一个
// double 特征，实体键为 user_id。实现 core.InterestStore 接口，
// 与 Redis 实现可互换。
type InterestStore struct {
	client   *feastsdk.GrpcClient
	project  string
	features []string
}

// NewInterestStore 连接 Feast Feature Server（gRPC）。
// features 是完整特征引用列表，例如 ["user_cate_score:sports", ...]。
func NewInterestStore(host string, port int, project string, features []string) (*InterestStore, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleInterest, core.ErrorCodeUnavailable,
			fmt.Sprintf("connect feast %s:%d", host, port), err)
	}
	return &InterestStore{client: client, project: project, features: features}, nil
}

// Profile 读取用户当前兴趣画像。用户不在特征存储中时各特征值为空，
// 对应返回空画像。
func (s *InterestStore) Profile(ctx context.Context, userID string) (core.InterestProfile, error) {
	resp, err := s.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: s.features,
		Entities: []feastsdk.Row{{"user_id": feastsdk.StrVal(userID)}},
		Project:  s.project,
	})
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleInterest, core.ErrorCodeUnavailable,
			"feast get online features", err)
	}

	rows := resp.Rows()
	profile := make(core.InterestProfile)
	if len(rows) == 0 {
		return profile, nil
	}
	for _, ref := range s.features {
		val, ok := rows[0][ref]
		if !ok {
			continue
		}
		weight, ok := doubleValue(val)
		if !ok {
			continue
		}
		profile[categoryOf(ref)] = weight
	}
	return profile, nil
}

// ProfileAt 读取历史兴趣快照。Feast 在线存储只保留最新物化值，
// 按日回溯需要走离线存储，此实现不支持。
func (s *InterestStore) ProfileAt(ctx context.Context, userID string, day time.Time) (core.InterestProfile, error) {
	return nil, core.NewDomainError(core.ModuleInterest, core.ErrorCodeInvalidInput,
		"historical interest snapshots are not available from the feast online store")
}

// categoryOf 取特征引用的最后一段作为类别名。
func categoryOf(ref string) string {
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// doubleValue 从 Feast 值中提取数值权重，非数值类型视为缺失。
func doubleValue(val *feasttypes.Value) (float64, bool) {
	if val == nil {
		return 0, false
	}
	switch v := val.Val.(type) {
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(v.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(v.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(v.Int32Val), true
	default:
		return 0, false
	}
}

var _ core.InterestStore = (*InterestStore)(nil)
