package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Log is the process-wide logger. Config loading runs before Initialize,
// so init installs a working default for anything that logs that early
// (and for tests that never call Initialize at all).
var Log *slog.Logger

func init() {
	Initialize("info", false)
}

// Initialize replaces the global logger with one at the given level,
// emitting JSON when useJSON is set and plain text otherwise.
func Initialize(level string, useJSON bool) {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// parseLevel maps the LOG_LEVEL config value onto a slog level, defaulting
// to info for anything unrecognized.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
