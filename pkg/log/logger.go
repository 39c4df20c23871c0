package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs a process-wide JSON slog logger at the given level
// ("debug", "info", "warn", "error") and returns a Logger wrapping it.
func SetupLogger(level string) Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(level),
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	l := slog.New(handler)
	slog.SetDefault(l)
	return &slogLogger{l: l}
}

// ToLogLevel maps a level name to a Level, panicking on an unrecognized
// value since it only ever runs against a literal CLI flag.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}

const (
	ErrAttrKey = "error"
)

// ErrAttr wraps err for inclusion in a structured log call.
func ErrAttr(err error) any {
	return slog.Any(ErrAttrKey, err)
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

// Nop returns a Logger that discards everything, used as a default when
// the caller hasn't configured logging (e.g. library usage, tests).
func Nop() Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
