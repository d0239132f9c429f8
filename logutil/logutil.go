package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

// LevelTrace sits below debug and is used for per-merge and per-call detail.
const LevelTrace slog.Level = -8

// NewLogger returns a text logger writing to w that reports short source
// locations and renders LevelTrace as TRACE.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	}))
}

type key string

// Trace logs at LevelTrace on the default logger, attributing the record to
// the caller.
func Trace(msg string, args ...any) {
	TraceContext(context.WithValue(context.TODO(), key("skip"), 1), msg, args...)
}

func TraceContext(ctx context.Context, msg string, args ...any) {
	logger := slog.Default()
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}

	skip, _ := ctx.Value(key("skip")).(int)
	pc, _, _, _ := runtime.Caller(1 + skip)
	record := slog.NewRecord(time.Now(), LevelTrace, msg, pc)
	record.Add(args...)
	_ = logger.Handler().Handle(ctx, record)
}

// Init installs a logger from NewLogger as the process default.
func Init(w io.Writer, level slog.Level) *slog.Logger {
	logger := NewLogger(w, level)
	slog.SetDefault(logger)
	return logger
}
