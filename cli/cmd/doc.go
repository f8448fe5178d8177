// Package cmd provides the build, check, dump, and init subcommands for
// compiling hybrid markup templates.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory, where freshness stamps are kept.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the default configuration file.
	ConfigIdentifier = "config"
)
