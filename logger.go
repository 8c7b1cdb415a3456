package kdgo

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with kdgo-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(id uint32, err error) {
	if err != nil {
		l.Error("add failed",
			"error", err,
		)
	} else {
		l.Debug("add completed",
			"id", id,
		)
	}
}

// LogAddBatch logs a batch add operation.
func (l *Logger) LogAddBatch(count int, err error) {
	if err != nil {
		l.Error("batch add failed",
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("batch add completed",
			"count", count,
		)
	}
}

// LogBuild logs a tree build.
func (l *Logger) LogBuild(st Stats, duration time.Duration, err error) {
	if err != nil {
		l.Error("build failed",
			"entries", st.Entries,
			"error", err,
		)
	} else {
		l.Info("build completed",
			"entries", st.IndexedEntries,
			"nodes", st.Nodes,
			"leaves", st.Leaves,
			"max_depth", st.MaxDepth,
			"duration", duration,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(kind SearchKind, resultsFound int, err error) {
	if err != nil {
		l.Error("search failed",
			"kind", kind.String(),
			"error", err,
		)
	} else {
		l.Debug("search completed",
			"kind", kind.String(),
			"results", resultsFound,
		)
	}
}

// LogClear logs a clear operation.
func (l *Logger) LogClear(dropped int) {
	l.Info("index cleared",
		"dropped", dropped,
	)
}
