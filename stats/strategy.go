package stats

// Strategy 是统计查询的执行路径，由激活的过滤维度唯一确定。
type Strategy int

const (
	// StrategyRange 无任何过滤：直接聚合日期范围内的全量日榜
	StrategyRange Strategy = iota
	// StrategyCategory 仅类别过滤：聚合类别日榜
	StrategyCategory
	// StrategyBehavior 仅行为过滤：全量日榜与用户候选集求交
	StrategyBehavior
	// StrategyCategoryBehavior 类别 + 行为：类别日榜与候选集求交
	StrategyCategoryBehavior
	// StrategyAttribute 属性过滤（可含类别）：全量日榜后按元数据逐条过滤
	StrategyAttribute
	// StrategyAttributeBehavior 属性 + 行为：候选集求交后再按元数据过滤
	StrategyAttributeBehavior
)

func (s Strategy) String() string {
	switch s {
	case StrategyRange:
		return "range"
	case StrategyCategory:
		return "category"
	case StrategyBehavior:
		return "behavior"
	case StrategyCategoryBehavior:
		return "category_behavior"
	case StrategyAttribute:
		return "attribute"
	case StrategyAttributeBehavior:
		return "attribute_behavior"
	}
	return "unknown"
}

// Classify 按过滤维度选择执行策略。纯函数，只读 Filters。
//
// 规则：属性过滤（topic/长度/expr）一旦出现就走元数据路径，类别此时
// 也降级为属性条件；否则类别走类别日榜；行为过滤与前两者正交。
func Classify(f *Filters) Strategy {
	attribute := f.hasOtherAttributeFilter()
	behavior := f.hasBehaviorFilter()
	category := f.Category != ""

	switch {
	case attribute && behavior:
		return StrategyAttributeBehavior
	case attribute:
		return StrategyAttribute
	case category && behavior:
		return StrategyCategoryBehavior
	case category:
		return StrategyCategory
	case behavior:
		return StrategyBehavior
	}
	return StrategyRange
}
