package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log discards until Init runs, so packages and tests can log freely.
var Log *slog.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Init installs the process logger: human-readable text in development,
// JSON everywhere else.
func Init(environment, level string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	Log = slog.New(handler).With("service", "handyman-recruitment-backend")
	slog.SetDefault(Log)
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
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
