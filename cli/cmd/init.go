package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tplc/log"
	"github.com/ardnew/tplc/profile"
)

// Generated configuration files indent nested values by two spaces.
const defaultConfigIndent = 2

// Init writes a configuration file seeded from the flag values of the
// current invocation, so a tuned command line becomes the persistent
// default.
type Init struct {
	Force bool `help:"Replace an existing configuration file" short:"f"`
}

// Run executes the init command, refusing to overwrite unless forced.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Refuse to clobber an existing file unless forced.
	if _, err = os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(
		buildConfig(ktx),
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return ErrYAMLMarshal.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err = os.WriteFile(confPath, data, 0o644); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig collects current flag values into a flat mapping keyed by
// flag name, the shape the configuration resolver reads back.
func buildConfig(ktx *kong.Context) map[string]any {
	cfg := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if skipFlag(flag) {
			continue
		}

		if val := flagValue(ktx, flag); val != nil {
			cfg[flag.Name] = val
		}
	}

	return cfg
}

// skipFlag excludes flags that have no place in a config file: hidden
// flags, one-shot actions like help and version, and profiler tuning.
func skipFlag(flag *kong.Flag) bool {
	if flag.Hidden {
		return true
	}

	for _, prefix := range []string{"help", "version", profile.Tag} {
		if strings.HasPrefix(flag.Name, prefix) {
			return true
		}
	}

	return false
}

// flagValue returns the config value for a CLI flag, or nil if unset or
// empty. Values marshal as native YAML scalars and sequences.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case map[string]string:
		if len(v) == 0 {
			return nil
		}

		return v

	default:
		return val
	}
}
