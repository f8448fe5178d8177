package cli

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardnew/mung"

	"github.com/ardnew/tplc/pkg"
)

// baseConfig is the base name of the user configuration file, stored in
// the user configuration directory with a format extension.
const baseConfig = "config"

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// basePrefix returns the name used for per-user directories. It derives
// from the executable name so renamed installs keep their configuration
// separate, falling back to the canonical command name for generated
// binaries such as the dlv debugger's __debug_bin output.
var basePrefix = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimLeft(name, ".")

	if name == "" || strings.HasPrefix(name, "__debug_bin") {
		return pkg.Name
	}

	return name
})

// userDir resolves a per-user base directory: the platform directory if
// available, then a dot directory under HOME, then the working
// directory.
func userDir(platform func() (string, error), dot string) string {
	if dir, err := platform(); err == nil {
		return filepath.Join(dir, basePrefix())
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, dot, basePrefix())
	}

	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, basePrefix())
	}

	return basePrefix()
}

// configDir returns the user configuration directory.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the user cache directory, which holds freshness
// stamps and profiler output.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins path elements onto the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// searchPath joins directories given on the command line ahead of
// directories from the configuration, PATH-style, dropping blank
// entries. The result is the ordered list of directories searched for
// template inputs.
func searchPath(flagDirs, configDirs []string) []string {
	joined := mung.Make(
		mung.WithSubjectItems(configDirs...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(flagDirs...),
		mung.WithFilter(func(s string) bool {
			return strings.TrimSpace(s) != ""
		}),
	).String()

	if joined == "" {
		return nil
	}

	return strings.Split(joined, string(os.PathListSeparator))
}

// mkdirAllRequired creates the runtime directories the command writes
// into.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
