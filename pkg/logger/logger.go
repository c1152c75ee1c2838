package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger writing to w with color support.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewDefault creates a logger on stderr at the given level.
func NewDefault(level slog.Level) *slog.Logger {
	return New(os.Stderr, level)
}

// NewFromConfig builds a logger from the textual level and format
// carried by the configuration. Unknown values fall back to a colored
// text logger at info level.
func NewFromConfig(level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: lvl,
		}))
	}
	return NewDefault(lvl)
}

// ParseLevel maps a level name to an slog.Level, defaulting to info.
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
