package catscope

import (
	"context"
	"log/slog"
)

// Logger emits log records for a single category. Its level is fixed at
// creation time by Scope.Logger; reconfigure by creating a new Logger.
type Logger struct {
	category string
	level    Level
	sl       *slog.Logger
}

// Category returns the dotted category name of the Logger.
func (l *Logger) Category() string {
	return l.category
}

// Level returns the level resolved for the Logger at creation time.
func (l *Logger) Level() Level {
	return l.level
}

// IsEnabled reports whether messages at lvl pass the resolved level.
// It is monotonic: if a level is enabled, so is every more severe one.
func (l *Logger) IsEnabled(lvl Level) bool {
	return lvl >= l.level
}

// Debug logs msg at LevelDebug if enabled.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args...)
}

// Info logs msg at LevelInfo if enabled.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs msg at LevelWarn if enabled.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, msg, args...)
}

// Error logs msg at LevelError.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, msg, args...)
}

func (l *Logger) log(lvl Level, msg string, args ...any) {
	if !l.IsEnabled(lvl) {
		return
	}
	l.sl.Log(context.Background(), lvl.slogLevel(), msg, args...)
}

type nilHandler struct{}

// NewNilHandler provides a nil slog.Handler for silencing slog.Log() calls.
func NewNilHandler() slog.Handler {
	return &nilHandler{}
}

func (h *nilHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (h *nilHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (h *nilHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *nilHandler) WithGroup(_ string) slog.Handler {
	return h
}
