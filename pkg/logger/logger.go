package logger

import (
	"log/slog"
	"os"
)

var base = slog.Default()

// Init configures the process-wide logger. Development gets debug-level
// text output, everything else JSON at info level.
func Init(env string) {
	if env == "development" {
		base = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		return
	}

	base = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func Debug(msg string, args ...any) {
	base.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	base.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	base.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	base.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	base.Error(msg, args...)
	os.Exit(1)
}
