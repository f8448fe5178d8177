// Package log is the structured logging layer for tplc, a thin wrapper
// over [log/slog].
//
// A [Logger] is immutable: [Make] fixes its configuration, and
// [Logger.Wrap] and [Logger.With] return reconfigured copies. The zero
// Logger silently discards records, so library types can embed one and
// log unconditionally.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//
//	logger.Info("compiled", slog.String("name", "index.tpl"))
//
// Five levels are defined, trace through error. Trace maps below
// slog's debug level and renders as "TRACE" rather than the "DEBUG-4"
// slog would print.
//
// Two encodings are available, [FormatText] and [FormatJSON], each in
// a plain machine-readable form and a colorized console form selected
// with [WithPretty]. The console form renders values by kind and
// indents JSON objects; colors degrade to plain text on terminals
// without color support.
//
// The package-level functions ([Info], [Error], ...) share one default
// logger writing to stderr. [Config] reconfigures it in place, which
// the CLI uses to apply --log-* flags as soon as they are seen:
//
//	log.Config(log.WithLevel(log.ParseLevel("trace")))
//	log.Info("search path resolved", slog.Int("dirs", len(dirs)))
package log
