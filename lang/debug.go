package lang

// Symbol maps one emitted range back to the source region it came
// from. Start and End are byte offsets into the compiled output, End
// exclusive; Span locates the original text.
type Symbol struct {
	Start int  `yaml:"start"`
	End   int  `yaml:"end"`
	Span  Span `yaml:"span"`
}

// SymbolTable is the debug artifact of one compile: symbols ordered
// by output start offset, each enclosing range listed before the
// ranges it contains. The table is a side channel and never changes
// the output bytes.
type SymbolTable struct {
	Name    string   `yaml:"name"`
	Symbols []Symbol `yaml:"symbols"`
}

// Lookup returns the innermost symbol covering the given output
// offset, or false when no emitted range contains it.
func (t *SymbolTable) Lookup(offset int) (Symbol, bool) {
	var (
		best  Symbol
		found bool
	)

	for _, sym := range t.Symbols {
		if offset < sym.Start {
			break
		}

		if offset >= sym.End {
			continue
		}

		// Later entries start at or after earlier ones, so the last
		// match is the innermost.
		best = sym
		found = true
	}

	return best, found
}
