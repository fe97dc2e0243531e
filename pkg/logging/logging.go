// Package logging 构造服务统一的 zerolog Logger。
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New 按级别字符串创建 JSON 输出的 Logger；console=true 时输出人类可读格式。
func New(level string, console bool) zerolog.Logger {
	lvl := levelFromString(level)
	var logger zerolog.Logger
	if console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}

func levelFromString(value string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return zerolog.ErrorLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "debug":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
