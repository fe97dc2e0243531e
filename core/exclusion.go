package core

import "context"

// ExclusionKind 是排除集合的种类。
type ExclusionKind string

const (
	ExclusionSeen    ExclusionKind = "seen"    // 已读（user_seen_news:{userId}）
	ExclusionDislike ExclusionKind = "dislike" // 不喜欢（user_dislike_news:{userId}）
)

// ExclusionRef 指向一个用户的一个排除集合，批量读取的寻址单元。
type ExclusionRef struct {
	UserID string
	Kind   ExclusionKind
}

// ExclusionStore 读取用户的排除集合。只有成员关系，无顺序无分数。
// 集合由用户浏览/反馈行为在外部单调增长，本服务只读。
type ExclusionStore interface {
	Members(ctx context.Context, userID string, kind ExclusionKind) ([]string, error)

	// BatchMembers 一次管道往返读取多个集合，结果顺序与 refs 一致；
	// 连接错误使整批失败（UNAVAILABLE）
	BatchMembers(ctx context.Context, refs []ExclusionRef) ([][]string, error)
}
