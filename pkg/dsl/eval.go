// Package dsl 提供统计过滤的表达式求值，基于 CEL (Common Expression Language) 实现。
// CEL 类型安全、线程安全，编译一次后可对每个候选新闻重复求值。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/newsbi/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("news", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// AttributePredicate 是编译好的新闻属性谓词。
//
// 表达式语法（CEL 标准语法），变量 news 含：
//   - news.id / news.category / news.topic（string）
//   - news.headline_length / news.body_length（int）
//
// 示例：
//   - `news.topic == "soccer" && news.headline_length < 80`
//   - `news.body_length >= 1000 || news.category == "sports"`
type AttributePredicate struct {
	prg cel.Program
}

// CompileAttributePredicate 编译表达式。空表达式返回 nil 谓词（恒真）。
// 语法错误返回 INVALID_INPUT。
func CompileAttributePredicate(expr string) (*AttributePredicate, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStats, core.ErrorCodeInternal, "cel env init failed", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleStats, core.ErrorCodeInvalidInput,
			fmt.Sprintf("invalid expr %q", expr), issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStats, core.ErrorCodeInvalidInput,
			fmt.Sprintf("invalid expr %q", expr), err)
	}
	return &AttributePredicate{prg: prg}, nil
}

// Match 对一条新闻属性求值。表达式结果必须是布尔。
func (p *AttributePredicate) Match(attr core.NewsAttributes) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(map[string]interface{}{
		"news": map[string]interface{}{
			"id":              attr.NewsID,
			"category":        attr.Category,
			"topic":           attr.Topic,
			"headline_length": attr.HeadlineLength,
			"body_length":     attr.BodyLength,
		},
	})
	if err != nil {
		return false, core.WrapDomainError(core.ModuleStats, core.ErrorCodeInvalidInput, "expr eval failed", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, core.NewDomainError(core.ModuleStats, core.ErrorCodeInvalidInput,
			fmt.Sprintf("expr must return boolean, got %T", out.Value()))
	}
	return result, nil
}
