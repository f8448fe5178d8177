package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// DefaultContextProvider returns the context attached to records logged
// through the context-free functions and methods.
var DefaultContextProvider = context.TODO

// def holds the process-wide logger used by the package-level
// functions. Diagnostics go to stderr so command output on stdout
// stays clean.
var def = initialDefault()

func initialDefault() *atomic.Pointer[Logger] {
	p := new(atomic.Pointer[Logger])
	l := Make(os.Stderr)
	p.Store(&l)

	return p
}

// Default returns the current package-level logger.
func Default() Logger {
	return *def.Load()
}

// Config replaces the package-level logger with a copy reconfigured by
// the given options.
func Config(opts ...Option) {
	l := Default().Wrap(opts...)
	def.Store(&l)
}

// TraceContext logs msg at trace level to the package logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelTrace, msg, attrs)
}

// Trace logs msg at trace level to the package logger.
func Trace(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs msg at debug level to the package logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelDebug, msg, attrs)
}

// Debug logs msg at debug level to the package logger.
func Debug(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs msg at info level to the package logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelInfo, msg, attrs)
}

// Info logs msg at info level to the package logger.
func Info(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs msg at warn level to the package logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelWarn, msg, attrs)
}

// Warn logs msg at warn level to the package logger.
func Warn(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs msg at error level to the package logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().emit(ctx, LevelError, msg, attrs)
}

// Error logs msg at error level to the package logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().emit(DefaultContextProvider(), LevelError, msg, attrs)
}

// With returns a copy of the package logger carrying attrs.
func With(attrs ...slog.Attr) Logger {
	return Default().With(attrs...)
}
