package roargo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with roargo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds a source name field to the logger (e.g. a snapshot name).
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithContainers adds a container count field to the logger.
func (l *Logger) WithContainers(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("containers", n),
	}
}

// WithCardinality adds a cardinality field to the logger.
func (l *Logger) WithCardinality(n uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("cardinality", n),
	}
}

// LogBuild logs a batch build operation.
func (l *Logger) LogBuild(words, containers int) {
	l.Debug("build completed",
		"words", words,
		"containers", containers,
	)
}

// LogDecode logs a streaming decode operation.
func (l *Logger) LogDecode(bytesRead int64, containers int, err error) {
	if err != nil {
		l.Error("decode failed",
			"bytes_read", bytesRead,
			"error", err,
		)
	} else {
		l.Debug("decode completed",
			"bytes_read", bytesRead,
			"containers", containers,
		)
	}
}

// LogBatchDecode logs a bulk decode operation.
func (l *Logger) LogBatchDecode(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch decode completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch decode completed",
			"count", count,
		)
	}
}
