package lang

// DirectiveSpec declares how the compiler treats one custom directive
// name. The zero value is the conservative policy applied to every
// undeclared name: opaque, depth-neutral, never folded.
type DirectiveSpec struct {
	// Foldable permits the folding pass to evaluate the directive at
	// compile time through Render.
	Foldable bool `yaml:"foldable"`

	// EmitsMarkup declares that the directive expands to markup when
	// evaluated. The optimizer then treats it as an opaque block:
	// never folded, and whitespace is not collapsed across it.
	EmitsMarkup bool `yaml:"emits_markup"`

	// Render produces the compile-time expansion from the directive's
	// argument text and the constant environment. Consulted only when
	// Foldable is set and EmitsMarkup is not.
	Render func(arg string, env map[string]any) (string, error) `yaml:"-"`
}

// Registry maps directive names to their declared behavior. It is
// immutable once built, so a single registry is safe to share across
// concurrent compilations. A nil registry declares nothing.
type Registry struct {
	specs map[string]DirectiveSpec
}

// NewRegistry builds a registry from the given declarations. The map
// is copied.
func NewRegistry(specs map[string]DirectiveSpec) *Registry {
	r := &Registry{specs: make(map[string]DirectiveSpec, len(specs))}
	for name, spec := range specs {
		r.specs[name] = spec
	}

	return r
}

// DefaultRegistry declares the directive names the compiler ships
// with. All of them defer evaluation to the host runtime; the two
// that inject markup are declared so the optimizer keeps its distance.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]DirectiveSpec{
		"block":      {},
		"endblock":   {},
		"csrf_token": {EmitsMarkup: true},
		"extends":    {},
		"include":    {EmitsMarkup: true},
		"load":       {},
		"now":        {},
		"trans":      {},
		"url":        {},
	})
}

// With returns a new registry with specs merged over r. Existing
// declarations with the same name are replaced.
func (r *Registry) With(specs map[string]DirectiveSpec) *Registry {
	merged := make(map[string]DirectiveSpec, r.Len()+len(specs))

	if r != nil {
		for name, spec := range r.specs {
			merged[name] = spec
		}
	}

	for name, spec := range specs {
		merged[name] = spec
	}

	return &Registry{specs: merged}
}

// Lookup reports the declaration for name. Undeclared names report
// ok false and compile as opaque leaves.
func (r *Registry) Lookup(name string) (spec DirectiveSpec, ok bool) {
	if r == nil {
		return DirectiveSpec{}, false
	}

	spec, ok = r.specs[name]

	return spec, ok
}

// Len reports the number of declared names.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.specs)
}
