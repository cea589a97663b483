package llogs

import (
	"log/slog"
	"strings"
)

type Driver interface {
	Close() bool
	Path() string
}

// ParseLevel maps the configured level name onto a slog level, falling back
// to info for unknown names.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
