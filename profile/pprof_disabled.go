//go:build !pprof

package profile

// Modes returns an empty list when built without the pprof build tag.
var Modes = func() []string { return nil }

// start is a no-op when built without the pprof build tag.
func start(Config) interface{ Stop() } { return ignore{} }
