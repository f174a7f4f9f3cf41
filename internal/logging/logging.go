// Package logging provides structured logging for the harness
package logging

import (
	"log/slog"
	"os"
)

// New creates a new structured logger writing to stdout.
//
// Trace output (one line per request/response pair) is emitted at Info;
// fatal diagnostics are emitted at Error just before the process exits.
func New(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
