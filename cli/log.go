package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tplc/log"
)

// logFormat reconfigures the logger as a side effect of parsing via
// encoding.TextUnmarshaler, so records emitted while kong is still
// parsing already use the requested format.
type logFormat string

func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(text))))

	return nil
}

// logLevel reconfigures the logger level the same way.
type logLevel string

func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(text))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"json"    enum:"json,text"                   help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                    help:"Set timestamp format."`
	Caller     bool      `default:"false"                                      help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                       help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars { return kong.Vars{} }

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies the fully parsed flag values, including TimeLayout and
// the booleans, which have no parse-time hook.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags ahead of kong so that records emitted
// during parsing honor them regardless of flag position. Level and
// format also configure themselves through TextUnmarshaler when kong
// parses them properly; the boolean flags have no such hook, which is
// why this early pass exists.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg, value, assigned := strings.Cut(args[i], "=")

		name, plain := strings.CutPrefix(arg, "--log-")
		if !plain {
			var ok bool
			if name, ok = strings.CutPrefix(arg, "--no-log-"); !ok {
				continue
			}
		}

		switch name {
		case "level":
			if !assigned {
				value, i = nextValue(args, i)
			}

			_ = f.Level.UnmarshalText([]byte(value))

		case "format":
			if !assigned {
				value, i = nextValue(args, i)
			}

			_ = f.Format.UnmarshalText([]byte(value))

		case "pretty":
			f.Pretty = boolFlag(value, assigned, !plain)
			log.Config(log.WithPretty(f.Pretty))

		case "caller":
			f.Caller = boolFlag(value, assigned, !plain)
			log.Config(log.WithCaller(f.Caller))
		}
	}
}

// nextValue consumes the following argument as a flag value when it
// does not itself look like a flag.
func nextValue(args []string, i int) (string, int) {
	if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
		return args[i+1], i + 1
	}

	return "", i
}

// boolFlag resolves one boolean flag occurrence. An explicit =value
// wins; otherwise the flag's own polarity decides. The negated form
// inverts whichever applies.
func boolFlag(value string, assigned, negated bool) bool {
	v := true

	if assigned {
		if parsed, err := strconv.ParseBool(value); err == nil {
			v = parsed
		}
	}

	return v != negated
}
