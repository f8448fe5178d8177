// Package profile provides optional runtime profiling for the tplc
// command, backed by [github.com/pkg/profile].
//
// Profiling is compiled in only when the binary is built with the
// pprof build tag; the default build reduces every call in this
// package to a no-op with zero overhead.
//
//	go build -tags pprof ./...
//
// # Modes
//
// With the tag enabled, [Modes] reports the supported profiling modes:
//
//	allocs, block, clock, cpu, goroutine, heap, mem, mutex, thread,
//	trace
//
// # Usage
//
// Fill in a [Config] and start it; stop the returned handle when the
// measured work is done:
//
//	stop := profile.Config{Mode: "cpu", Dir: dir, Quiet: true}.Start()
//	defer stop.Stop()
//
// The tplc command wires this to its --pprof-mode and --pprof-dir
// flags, defaulting the output directory to pprof/ under the user
// cache directory. Profile files carry the mode name (cpu.pprof,
// mem.pprof, ...) and are read with go tool pprof:
//
//	tplc --pprof-mode cpu build site/ -o public/
//	go tool pprof ./tplc cpu.pprof
//
// Builds with the tag also import [net/http/pprof], registering its
// /debug/pprof/ handlers for processes that serve HTTP.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
