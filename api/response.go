package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/newsbi/core"
)

// Envelope 是所有接口的统一响应外壳。Timestamp 为响应时刻的毫秒
// Unix 时间，Elapsed 为服务端处理毫秒数。
type Envelope struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
	Elapsed   int64       `json:"elapsed"`
	Data      interface{} `json:"data"`
}

// writeJSON 组装外壳并序列化。started 用于计算 Elapsed。
func writeJSON(w http.ResponseWriter, status int, data interface{}, message string, started time.Time) {
	env := Envelope{
		Code:      status,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Elapsed:   time.Since(started).Milliseconds(),
		Data:      data,
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// 编码失败时头已发出，只能留日志，交给 handler 外层的 logger
	_ = json.NewEncoder(w).Encode(env)
}

// writeOK 写成功响应。
func writeOK(w http.ResponseWriter, data interface{}, started time.Time) {
	writeJSON(w, http.StatusOK, data, "success", started)
}

// writeError 按领域错误码映射 HTTP 状态写错误响应，并记录一条日志。
// 4xx 是调用方问题记 warn，5xx 记 error。
func writeError(w http.ResponseWriter, r *http.Request, err error, started time.Time) {
	status := core.HTTPStatus(err)
	message := err.Error()

	logger := zerolog.Ctx(r.Context())
	evt := logger.Error()
	if status < http.StatusInternalServerError {
		evt = logger.Warn()
	}
	evt.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	writeJSON(w, status, nil, message, started)
}
