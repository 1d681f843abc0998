// Package logger configures the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"
)

// Init installs a text handler on stdout as the default logger. DEBUG=true
// lowers the level.
func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, opts)))
}

func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}
