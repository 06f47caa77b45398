package logging

import (
	"log/slog"
	"os"

	"github.com/go-monolith/mono/pkg/types"
)

// New returns a types.Logger backed by slog.
// prod gets JSON logs at INFO level, everything else text at DEBUG.
func New(env string) types.Logger {
	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return &slogLogger{l: slog.New(handler)}
}

// slogLogger adapts *slog.Logger to the framework's Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) types.Logger {
	return &slogLogger{l: s.l.With(args...)}
}

func (s *slogLogger) WithError(err error) types.Logger {
	return s.With("error", err)
}

func (s *slogLogger) WithModule(module string) types.Logger {
	return s.With("module", module)
}
