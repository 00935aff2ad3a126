// Package logging defines a minimal structured-logging interface used across
// the project, with a slog backend for humans and a zap backend for machines.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "request sent", "method", req.Method, "path", req.URL.Path)
type Logger interface {
	// Debug logs diagnostic details that are hidden at the default level.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds a Logger writing to w. FormatText yields the slog text handler,
// FormatJSON the zap JSON encoder. Unknown levels fall back to info.
func New(format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = slog.LevelInfo
		}
		h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
		return NewSlogLogger(slog.New(h)), nil
	case FormatJSON:
		return NewZapLogger(w, level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
