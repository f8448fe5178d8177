//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // serve /debug/pprof in tagged builds
)

// modes maps each mode name to its pkg/profile selector.
var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the sorted list of supported profiling modes when built
// with the pprof build tag.
var Modes = sync.OnceValue(func() []string {
	return slices.Sorted(maps.Keys(modes))
})

func start(c Config) interface{ Stop() } {
	fn, ok := modes[c.Mode]
	if !ok {
		return ignore{}
	}

	opts := []func(*profile.Profile){fn}

	if c.Dir != "" {
		opts = append(opts, profile.ProfilePath(c.Dir))
	}

	if c.Quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...)
}
