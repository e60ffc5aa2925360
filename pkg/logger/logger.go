// Package logger provides component-scoped structured logging for the
// agent, service, tool, and memory subsystems. All entries carry a
// "component" attribute so logs from different subsystems can be filtered.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var active atomic.Pointer[slog.Logger]

func init() {
	SetLevel("info")
}

// SetLevel replaces the process logger with one at the given level.
// Accepted values: debug, info, warn, error. Unknown values fall back to info.
func SetLevel(level string) {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	active.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})))
}

// SetLogger installs a custom slog.Logger; nil restores the default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		SetLevel("info")
		return
	}
	active.Store(l)
}

func current() *slog.Logger {
	if l := active.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// DebugCF logs a debug message for a component with structured fields.
func DebugCF(component, msg string, fields map[string]interface{}) {
	current().Debug(msg, attrs(component, fields)...)
}

// InfoCF logs an info message for a component with structured fields.
func InfoCF(component, msg string, fields map[string]interface{}) {
	current().Info(msg, attrs(component, fields)...)
}

// WarnCF logs a warning for a component with structured fields.
func WarnCF(component, msg string, fields map[string]interface{}) {
	current().Warn(msg, attrs(component, fields)...)
}

// ErrorCF logs an error for a component with structured fields.
func ErrorCF(component, msg string, fields map[string]interface{}) {
	current().Error(msg, attrs(component, fields)...)
}

func attrs(component string, fields map[string]interface{}) []any {
	out := make([]any, 0, 2+len(fields)*2)
	out = append(out, "component", component)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
