package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a structured logger appropriate for the environment.
// Production uses JSON format, development uses human-readable text.
func NewLogger(env, level string) *slog.Logger {
	return NewLoggerTo(os.Stdout, env, level)
}

// NewLoggerTo is NewLogger writing to w. The scan command logs to stderr
// because stdout carries the JSON report.
func NewLoggerTo(w io.Writer, env, level string) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if env != "production" {
		opts.Level = slog.LevelDebug
	}

	if lvl, ok := ParseLevel(level); ok {
		opts.Level = lvl
	}

	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a LOG_LEVEL value to a slog level. The second return
// is false for empty or unknown values, leaving the environment default.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}

	return slog.LevelInfo, false
}
