package lang

import "log/slog"

// fold splices conditional directives whose guards decide at compile
// time, replaces static variables with their literal text, and
// renders foldable custom directives. The pass is conservative:
// anything it cannot prove, it leaves alone, and it never fails the
// compile. Loops never fold; their trip count is a runtime fact.
func fold(nodes []Node, g *guards, opts options) []Node {
	out := make([]Node, 0, len(nodes))

	for _, n := range nodes {
		switch n := n.(type) {
		case *Directive:
			out = append(out, foldDirective(n, g, opts)...)
		case *Element:
			foldElement(n, g, opts)
			out = append(out, n)
		case *AssetRegion:
			foldElement(n.Elem, g, opts)
			out = append(out, n)
		case *Variable:
			out = append(out, foldVariable(n, g, opts))
		case *Text, *Comment, *RawBlock, *StrayClose:
			out = append(out, n)
		default:
			out = append(out, n)
		}
	}

	return out
}

func foldElement(e *Element, g *guards, opts options) {
	e.Header = foldParts(e.Header, g, opts)
	e.Children = fold(e.Children, g, opts)
}

func foldDirective(d *Directive, g *guards, opts options) []Node {
	switch d.Kind {
	case DirConditional:
		win, decided := winner(d, g, opts)
		if !decided {
			for _, br := range d.Branches {
				br.Children = fold(br.Children, g, opts)
			}

			return []Node{d}
		}

		if win == nil {
			return nil
		}

		return fold(win.Children, g, opts)
	case DirLoop:
		for _, br := range d.Branches {
			br.Children = fold(br.Children, g, opts)
		}

		return []Node{d}
	case DirCustom:
		return []Node{foldCustom(d, g, opts)}
	case DirOpaque:
		return []Node{d}
	}

	return []Node{d}
}

// winner picks the branch a constant guard chain selects. decided is
// false when any guard reached before a match is not static; a nil
// winner with decided true means every guard is false and there is no
// fallback branch.
func winner(d *Directive, g *guards, opts options) (*Branch, bool) {
	for _, br := range d.Branches {
		if br.Keyword == kwElse {
			return br, true
		}

		if !g.static(br.Arg) {
			return nil, false
		}

		t, err := g.truth(br.Arg)
		if err != nil {
			opts.logger.Debug("guard left unfolded",
				slog.String("source", br.Arg),
				slog.Any("error", err),
			)

			return nil, false
		}

		if t {
			return br, true
		}
	}

	return nil, true
}

// foldParts splices conditional attribute groups inside an element
// header. Variables in header position never fold; their output is
// attribute source text, which would need another scan.
func foldParts(parts []HeaderPart, g *guards, opts options) []HeaderPart {
	out := make([]HeaderPart, 0, len(parts))

	for _, part := range parts {
		d, ok := part.(*Directive)
		if !ok || d.Kind != DirConditional {
			out = append(out, part)

			continue
		}

		win, decided := winner(d, g, opts)
		if !decided {
			out = append(out, part)

			continue
		}

		if win != nil {
			out = append(out, foldParts(win.Parts, g, opts)...)
		}
	}

	return out
}

func foldVariable(v *Variable, g *guards, opts options) Node {
	if !g.static(v.Expr) {
		return v
	}

	result, err := g.eval(v.Expr)
	if err != nil {
		opts.logger.Debug("variable left unfolded",
			slog.String("source", v.Expr),
			slog.Any("error", err),
		)

		return v
	}

	text, ok := literal(result)
	if !ok {
		return v
	}

	return &Text{Text: text, Span: v.Span}
}

// foldCustom renders a registered directive when its registration
// permits: the render output is inert text, so only directives that
// declare they emit no markup are eligible.
func foldCustom(d *Directive, g *guards, opts options) Node {
	spec, ok := opts.registry.Lookup(d.Name)
	if !ok || !spec.Foldable || spec.EmitsMarkup || spec.Render == nil {
		return d
	}

	text, err := spec.Render(d.Branches[0].Arg, g.consts)
	if err != nil {
		opts.logger.Debug("directive left unfolded",
			slog.String("name", d.Name),
			slog.Any("error", err),
		)

		return d
	}

	return &Text{Text: text, Span: d.Span}
}
