// Package logger builds the application's root slog.Logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLogLevel maps debug|info|warn|error (any case) to a slog level.
// Unknown values fall back to info.
func ParseLogLevel(level string) slog.Level {
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

// InitLogger returns a colourised tint logger for dev and a JSON logger for
// every other environment, writing to stdout. It also becomes slog's default.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	l := New(os.Stdout, level, environment)
	slog.SetDefault(l)
	return l
}

// New builds the logger without touching the process-wide default.
func New(w io.Writer, level slog.Level, environment string) *slog.Logger {
	if environment == "dev" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
