package lang

import (
	"slices"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tplc/log"
)

// options is the full configuration of one compilation.
type options struct {
	syntax    Syntax
	registry  *Registry
	constants map[string]any
	logger    log.Logger

	rawTags  []string
	voidTags []string

	compress     bool
	mergeScripts bool
	mergeStyles  bool
	validate     bool
	symbols      bool
}

// Option configures a [Compiler].
type Option func(options) options

func defaultOptions() options {
	return options{
		syntax:       DefaultSyntax(),
		registry:     DefaultRegistry(),
		compress:     true,
		mergeScripts: true,
		mergeStyles:  true,
		validate:     true,
	}
}

func (o options) apply(opts ...Option) options {
	for _, opt := range opts {
		if opt != nil {
			o = opt(o)
		}
	}

	return o
}

// WithSyntax overrides the source delimiters.
func WithSyntax(s Syntax) Option {
	return func(o options) options { o.syntax = s; return o }
}

// WithRegistry replaces the directive registry.
func WithRegistry(r *Registry) Option {
	return func(o options) options { o.registry = r; return o }
}

// WithDirectives merges directive declarations over the current
// registry.
func WithDirectives(specs map[string]DirectiveSpec) Option {
	return func(o options) options { o.registry = o.registry.With(specs); return o }
}

// WithConstants sets the compile-time constant environment consulted
// when folding guards and substitutions.
func WithConstants(env map[string]any) Option {
	return func(o options) options { o.constants = env; return o }
}

// WithLogger sets the logger used for compile progress and pass
// diagnostics. The zero logger discards everything.
func WithLogger(l log.Logger) Option {
	return func(o options) options { o.logger = l; return o }
}

// WithWhitespaceCompression toggles collapsing runs of insignificant
// whitespace.
func WithWhitespaceCompression(on bool) Option {
	return func(o options) options { o.compress = on; return o }
}

// WithScriptMerging toggles merging adjacent inline script regions.
func WithScriptMerging(on bool) Option {
	return func(o options) options { o.mergeScripts = on; return o }
}

// WithStyleMerging toggles merging adjacent inline style regions.
func WithStyleMerging(on bool) Option {
	return func(o options) options { o.mergeStyles = on; return o }
}

// WithValidation toggles markup validation. When disabled, fragments
// the resolver cannot reconcile serialize verbatim instead of
// failing the compile.
func WithValidation(on bool) Option {
	return func(o options) options { o.validate = on; return o }
}

// WithDebugSymbols toggles emission of the output-to-source span
// table.
func WithDebugSymbols(on bool) Option {
	return func(o options) options { o.symbols = on; return o }
}

// WithRawTags adds element names whose content is exempt from markup
// interpretation and whitespace compression.
func WithRawTags(names ...string) Option {
	return func(o options) options {
		o.rawTags = append(slices.Clip(o.rawTags), names...)

		return o
	}
}

// WithVoidTags adds element names that never take a close tag.
func WithVoidTags(names ...string) Option {
	return func(o options) options {
		o.voidTags = append(slices.Clip(o.voidTags), names...)

		return o
	}
}

// boolSettings maps canonical option strings to their constructors.
// Each name also accepts a "no-" prefix to negate it.
var boolSettings = map[string]func(bool) Option{
	"whitespace-compression": WithWhitespaceCompression,
	"inline-script-merging":  WithScriptMerging,
	"inline-style-merging":   WithStyleMerging,
	"markup-validation":      WithValidation,
	"debug-symbols":          WithDebugSymbols,
}

// listSettings maps option strings that carry a comma-separated value
// to their constructors.
var listSettings = map[string]func(...string) Option{
	"raw-tag-names":  WithRawTags,
	"void-tag-names": WithVoidTags,
}

// knownSettings enumerates every recognized option string, sorted,
// for validation messages and suggestions.
var knownSettings = sync.OnceValue(func() []string {
	names := make([]string, 0, 2*len(boolSettings)+len(listSettings))

	for name := range boolSettings {
		names = append(names, name, "no-"+name)
	}

	for name := range listSettings {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
})

// Setting parses one option string into an [Option]. Recognized forms
// are the canonical names, their "no-" negations, and "name=a,b" for
// list-valued names. Anything else is a [*ConfigError] carrying the
// closest recognized name as a suggestion.
func Setting(s string) (Option, error) {
	name, value, hasValue := strings.Cut(strings.TrimSpace(s), "=")
	name = strings.TrimSpace(name)

	if with, ok := listSettings[name]; ok {
		items := splitList(value)
		if !hasValue || len(items) == 0 {
			return nil, &ConfigError{Option: s, Suggest: name + "=name[,name]"}
		}

		return with(items...), nil
	}

	enable := true
	if base, ok := strings.CutPrefix(name, "no-"); ok {
		name, enable = base, false
	}

	with, ok := boolSettings[name]
	if !ok {
		return nil, &ConfigError{Option: s, Suggest: closestSetting(name)}
	}

	if hasValue {
		// Boolean options take no value; negation is spelled "no-".
		return nil, &ConfigError{Option: s, Suggest: name}
	}

	return with(enable), nil
}

// ParseSettings parses each option string in order. It stops at the
// first unrecognized one, so a bad configuration is rejected before
// any file is compiled.
func ParseSettings(settings ...string) ([]Option, error) {
	opts := make([]Option, 0, len(settings))

	for _, s := range settings {
		opt, err := Setting(s)
		if err != nil {
			return nil, err
		}

		opts = append(opts, opt)
	}

	return opts, nil
}

// closestSetting reports the best fuzzy match for a misspelled option
// name, or "" when nothing comes close.
func closestSetting(name string) string {
	matches := fuzzy.Find(name, knownSettings())
	if len(matches) == 0 {
		return ""
	}

	return matches[0].Str
}

func splitList(value string) []string {
	items := make([]string, 0, strings.Count(value, ",")+1)

	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
