package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// значения этих атрибутов никогда не попадают в лог
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"access_token":  {},
	"refresh_token": {},
	"token":         {},
	"authorization": {},
	"secret_key":    {},
}

const redacted = "[REDACTED]"

// New создает slog логгер. format: json (по умолчанию) или text
func New(level string, format string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	options := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if _, ok := sensitiveKeys[strings.ToLower(attr.Key)]; ok {
				return slog.String(attr.Key, redacted)
			}
			return attr
		},
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "console":
		handler = slog.NewTextHandler(output, options)
	default:
		handler = slog.NewJSONHandler(output, options)
	}

	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard логгер для тестов
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
