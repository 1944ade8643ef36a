package logger

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON in production, text everywhere else.
// It also becomes slog's default logger.
func New(env string) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}
