package cmd

import (
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tplc/lang"
	"github.com/ardnew/tplc/log"
)

// compileFlags are the compiler options shared by every command that
// parses templates. The --option flag accepts the same grammar as
// in-source option tags, so a setting can move freely between the
// command line, the configuration file, and the template itself.
type compileFlags struct {
	Option []string          `help:"Set a compiler option (in-source option tag grammar)" name:"option" placeholder:"name[=a,b]" short:"O"`
	Const  map[string]string `help:"Bind a compile-time constant for guard evaluation"    name:"const"  placeholder:"name=value" short:"D"`
}

// options converts the parsed flags, plus the project file's constants
// and directive declarations, into compiler options. Constant values
// are decoded as YAML scalars so numbers and booleans bind with their
// natural types; command-line constants override project ones.
func (f *compileFlags) options() ([]lang.Option, error) {
	proj, err := loadProject(ProjectFile)
	if err != nil {
		return nil, err
	}

	opts, err := lang.ParseSettings(f.Option...)
	if err != nil {
		return nil, err
	}

	if len(proj.Directives) > 0 {
		opts = append(opts, lang.WithDirectives(proj.Directives))
	}

	if consts := f.constants(proj.Constants); len(consts) > 0 {
		opts = append(opts, lang.WithConstants(consts))
	}

	return append(opts, lang.WithLogger(log.Default())), nil
}

// constants merges the --const flags over the project constant map.
func (f *compileFlags) constants(base map[string]any) map[string]any {
	consts := make(map[string]any, len(base)+len(f.Const))

	for name, value := range base {
		consts[name] = value
	}

	for name, value := range f.Const {
		consts[name] = constValue(value)
	}

	return consts
}

// constValue decodes one constant binding. Values that fail to decode,
// or decode to null, bind as plain strings.
func constValue(s string) any {
	var v any

	err := yaml.Unmarshal([]byte(s), &v)
	if err != nil || v == nil {
		return s
	}

	return v
}
