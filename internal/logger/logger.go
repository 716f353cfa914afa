// Package logger builds the structured JSON logger used by both binaries.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/wallet-ledger/internal/config"
)

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New writes JSON records at or above level to w. Debug loggers include source positions.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
}

// NewLogger returns the process logger tagged with the application name and environment.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)
	log := New(os.Stdout, level).With(
		"app", cfg.Application.Name,
		"env", cfg.Application.Env,
	)
	log.Info("logger initialized", "level", level.String())
	return log
}
