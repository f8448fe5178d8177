package cmd

import (
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tplc/lang"
	"github.com/ardnew/tplc/pkg"
)

// ProjectFile is the name of the per-project configuration file,
// consulted in the working directory.
//
// Flag-shaped keys (output, jobs, option, ...) are applied through the
// kong configuration resolver. The two nested sections defined here,
// constants and directives, carry structure no flag can express and are
// read directly by the compile commands.
const ProjectFile = pkg.Name + ".yaml"

// project is the compiler-facing portion of the project configuration.
type project struct {
	// Constants is the compile-time constant environment. Guards and
	// substitutions whose identifiers all resolve here fold during
	// compilation.
	Constants map[string]any `yaml:"constants"`

	// Directives declares how named custom directives behave, merged
	// over the built-in registry.
	Directives map[string]lang.DirectiveSpec `yaml:"directives"`
}

// loadProject reads the project configuration at path. A missing file
// is an empty project; a malformed one is an error, unlike the flag
// resolver, because silently dropping constants would change what the
// compiler folds.
func loadProject(path string) (project, error) {
	var p project

	data, err := os.ReadFile(path)
	if err != nil {
		return p, nil
	}

	err = yaml.Unmarshal(data, &p)
	if err != nil {
		return p, ErrProjectConfig.Wrap(err).
			With(slog.String("path", path))
	}

	return p, nil
}
