package core

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）与 HTTP 状态码映射
//
// 使用场景：
//   - 参数校验错误：INVALID_INPUT（日期/时间戳格式等）
//   - 资源不存在：NOT_FOUND（单条新闻查询未命中）
//   - 存储不可用：UNAVAILABLE（Redis/Postgres 连接、超时、管道批量失败）
//   - 其他内部错误：INTERNAL
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_INPUT", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "ranking", "newsdb", "stats"）
	Cause   error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Module, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Module, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Cause }

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

// WrapDomainError 创建携带底层错误的领域错误。
func WrapDomainError(module, code, message string, cause error) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message, Cause: cause}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效（400）
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在（404）
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 存储不可用/超时，可重试（500）
	ErrorCodeInternal     = "INTERNAL"      // 内部错误（500）
)

// 模块名称常量
const (
	ModuleRanking   = "ranking"   // 排行榜存储
	ModuleNewsDB    = "newsdb"    // 关系库
	ModuleStats     = "stats"     // 统计查询
	ModuleRecommend = "recommend" // 推荐
	ModuleInterest  = "interest"  // 兴趣画像
)

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT。
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsUnavailable 检查错误是否为 UNAVAILABLE。
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// HTTPStatus 将领域错误映射为 HTTP 状态码。
// 未知错误一律按 500 处理。
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
