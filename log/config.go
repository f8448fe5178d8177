package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Level is the severity of a log record.
type Level slog.Level

// Severity constants accepted by [WithLevel] and ordered from most to
// least verbose. Trace sits one slog increment below debug so stock
// slog handlers sort it correctly.
const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the level used when none is configured.
const DefaultLevel = LevelInfo

// levels lists every defined level from most to least verbose.
var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels returns an iterator over the names of all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range levels {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a string representation of a log level. Beyond the
// five level names, it accepts anything [slog.Level.UnmarshalText]
// understands, such as "INFO+2". Unrecognized values yield
// [DefaultLevel].
func ParseLevel(s string) Level {
	name := strings.ToLower(strings.TrimSpace(s))

	for _, l := range levels {
		if name == l.String() {
			return l
		}
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(name)); err == nil {
		return Level(sl)
	}

	return DefaultLevel
}

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the format used when none is configured.
const DefaultFormat = FormatJSON

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat maps a format name to its Format. Unrecognized values
// yield [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatText.String():
		return FormatText
	case FormatJSON.String():
		return FormatJSON
	}

	return DefaultFormat
}

// Remaining defaults applied by [Make] before its options run.
const (
	DefaultTimeLayout = time.RFC3339
	DefaultCaller     = false
	DefaultPretty     = true
)

// FormatTime renders a record timestamp, or returns "" to omit it.
type FormatTime func(time.Time) string

// config carries every knob a [Logger] is built from. A logger's config
// never changes once the logger exists: options run on private copies
// inside [Make] and [Logger.Wrap], so no locking is involved.
type config struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option transforms a config, returning the updated copy.
type Option func(config) config

// apply folds opts over cfg in order.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// makeConfig builds the configuration of a new logger writing to w.
func makeConfig(w io.Writer, opts ...Option) config {
	return apply(WithDefaults(w)(config{}), opts...)
}

// handler builds the slog handler the configuration describes.
func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch {
	case c.pretty:
		return newConsole(c.output, c.format, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)
	}

	return slog.DiscardHandler
}

// replaceAttr applies the configured time layout and renames the trace
// level, which slog would otherwise print as "DEBUG-4".
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			break
		}

		s := c.formatTime(t)
		if s == "" {
			return slog.Attr{}
		}

		a.Value = slog.StringValue(s)

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

// WithDefaults resets every field to its default and directs output
// to w. A nil writer discards all records.
func WithDefaults(w io.Writer) Option {
	return func(config) config {
		if w == nil {
			w = io.Discard
		}

		return config{
			output:     w,
			formatTime: timeFormatter(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		}
	}
}

// WithOutput directs log records to w. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel discards records below the given level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the layout used to format record timestamps.
//
// The layout is either a named layout from the [time] package
// ("RFC3339", "Kitchen", ...), one of a few shorthands ("ms", "us",
// "ns"), or a custom layout passed verbatim to [time.Time.Format].
// The name "none" or a blank layout omits timestamps entirely.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = timeFormatter(layout)

		return c
	}
}

// WithCaller includes the logging call site in each record.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty renders records for humans: colorized fields and, for
// JSON, indented objects. Machine consumers want WithPretty(false).
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

// timeFormatter resolves a layout name to a rendering function.
// Unknown names are treated as custom layouts and used verbatim.
func timeFormatter(layout string) FormatTime {
	switch strings.ToLower(strings.TrimSpace(layout)) {
	case "", "none":
		return func(time.Time) string { return "" }
	case "rfc3339":
		layout = time.RFC3339
	case "rfc3339nano":
		layout = time.RFC3339Nano
	case "rfc822":
		layout = time.RFC822
	case "rfc850":
		layout = time.RFC850
	case "ansic":
		layout = time.ANSIC
	case "unixdate":
		layout = time.UnixDate
	case "kitchen":
		layout = time.Kitchen
	case "stamp":
		layout = time.Stamp
	case "stampmilli", "milli", "ms":
		layout = time.StampMilli
	case "stampmicro", "micro", "us":
		layout = time.StampMicro
	case "stampnano", "nano", "ns":
		layout = time.StampNano
	}

	return func(t time.Time) string { return t.Format(layout) }
}
