package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger is an immutable logging handle built on [log/slog]. The zero
// value discards every record and is safe to use, so library types can
// embed one without any wiring.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a [Logger] writing to w with [DefaultFormat],
// [DefaultLevel], [DefaultTimeLayout], and call sites disabled, then
// applies opts in order.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// Wrap returns a copy of the logger reconfigured by opts. The receiver
// is unchanged. Wrapping the zero Logger builds a fresh one, which
// still discards records unless opts include [WithOutput].
func (l Logger) Wrap(opts ...Option) Logger {
	if l.Logger == nil {
		return Make(nil, opts...)
	}

	cfg := apply(l.config, opts...)

	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// With returns a copy of the logger that includes attrs in every
// record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	return Logger{
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
		config: l.config,
	}
}

// Level reports the minimum level the logger records.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.config.level
}

// Format reports the record encoding in use.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.config.format
}

// TraceContext logs msg at trace level with the provided context.
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelTrace, msg, attrs)
}

// Trace logs msg at trace level.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs msg at debug level with the provided context.
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelDebug, msg, attrs)
}

// Debug logs msg at debug level.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs msg at info level with the provided context.
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelInfo, msg, attrs)
}

// Info logs msg at info level.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs msg at warn level with the provided context.
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelWarn, msg, attrs)
}

// Warn logs msg at warn level.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs msg at error level with the provided context.
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelError, msg, attrs)
}

// Error logs msg at error level.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelError, msg, attrs)
}

// emit forwards one record to the handler. Every exported entry point,
// including the package-level functions, calls emit directly, so the
// originating call site is always a fixed three frames up.
func (l Logger) emit(ctx context.Context, level Level, msg string, attrs []slog.Attr) {
	if l.Logger == nil || !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pcs [1]uintptr

	// Frame 0 is runtime.Callers, 1 is emit, 2 is the exported wrapper.
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)

	_ = l.Handler().Handle(ctx, r)
}
