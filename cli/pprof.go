//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tplc/log"
	"github.com/ardnew/tplc/profile"
)

// pprofConfig exposes the profiler through --pprof-* flags. The flag
// group exists only in binaries built with the pprof tag.
type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Capture a runtime profile"  placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Directory for profile data"                     type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start launches the profiler when a mode was selected. The returned
// stop function is always safe to call.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	log.DebugContext(ctx, "starting profiler",
		slog.String("mode", f.Mode),
		slog.String("dir", f.Dir),
	)

	handle := profile.Config{Mode: f.Mode, Dir: f.Dir, Quiet: true}.Start()

	return func() {
		handle.Stop()
		log.DebugContext(ctx, "profiler stopped", slog.String("mode", f.Mode))
	}
}
