package lang

import "strings"

// emitter writes the canonical text form of a compiled tree. Output
// is deterministic and stable under recompilation: parsing what the
// emitter wrote and emitting it again reproduces the same bytes.
type emitter struct {
	out  strings.Builder
	s    Syntax
	syms *SymbolTable
}

// serialize renders nodes with the given delimiter set. When syms is
// non-nil, every node with a known source span records the output
// range it produced.
func serialize(nodes []Node, s Syntax, syms *SymbolTable) string {
	e := &emitter{s: s, syms: syms}
	e.nodes(nodes)

	return e.out.String()
}

// mark opens a symbol for the region about to be written and returns
// the func that seals its end offset.
func (e *emitter) mark(span Span) func() {
	if e.syms == nil || span.IsZero() {
		return func() {}
	}

	i := len(e.syms.Symbols)
	e.syms.Symbols = append(e.syms.Symbols, Symbol{Start: e.out.Len(), Span: span})

	return func() { e.syms.Symbols[i].End = e.out.Len() }
}

func (e *emitter) nodes(nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			done := e.mark(n.Span)
			e.out.WriteString(n.Text)
			done()
		case *Comment:
			done := e.mark(n.Span)
			e.out.WriteString(n.Text)
			done()
		case *Variable:
			e.variable(n)
		case *RawBlock:
			done := e.mark(n.Span)
			e.out.WriteString(n.Text)
			done()
		case *Element:
			e.element(n)
		case *AssetRegion:
			e.element(n.Elem)
		case *Directive:
			e.directive(n)
		case *StrayClose:
			// Reaches the output only with validation off.
			done := e.mark(n.Span)
			e.out.WriteString("</")
			e.out.WriteString(n.Tag)
			e.out.WriteByte('>')
			done()
		}
	}
}

func (e *emitter) element(el *Element) {
	done := e.mark(el.nodeSpan())

	e.out.WriteByte('<')
	e.out.WriteString(el.Tag)

	for _, part := range el.Header {
		e.out.WriteByte(' ')
		e.part(part)
	}

	if el.SelfClosing {
		e.out.WriteString("/>")
		done()

		return
	}

	e.out.WriteByte('>')

	if el.Void {
		done()

		return
	}

	e.nodes(el.Children)

	// A nil close span means the element was never closed, which only
	// survives to this point with validation off; the text form stays
	// unclosed too.
	if el.CloseSpan != nil {
		e.out.WriteString("</")
		e.out.WriteString(el.Tag)
		e.out.WriteByte('>')
	}

	done()
}

func (e *emitter) part(p HeaderPart) {
	switch p := p.(type) {
	case *Attr:
		e.out.WriteString(p.Name)

		if p.Value != "" {
			e.out.WriteByte('=')
			e.out.WriteString(p.Value)
		}
	case *Directive:
		e.group(p)
	case *Variable:
		e.variable(p)
	}
}

// group writes a branch-tagged attribute run: each branch's guard
// block followed by its parts, then the closing block.
func (e *emitter) group(d *Directive) {
	done := e.mark(d.Span)

	for _, br := range d.Branches {
		e.block(br.Keyword, br.Arg)

		for i, part := range br.Parts {
			if i > 0 {
				e.out.WriteByte(' ')
			}

			e.part(part)
		}
	}

	e.close(d.Kind)
	done()
}

func (e *emitter) directive(d *Directive) {
	done := e.mark(d.Span)

	for _, br := range d.Branches {
		e.block(br.Keyword, br.Arg)
		e.nodes(br.Children)
	}

	e.close(d.Kind)
	done()
}

func (e *emitter) close(kind DirectiveKind) {
	switch kind {
	case DirConditional:
		e.block(kwEndif, "")
	case DirLoop:
		e.block(kwEndfor, "")
	case DirCustom, DirOpaque:
		// Leaf directives have no end marker.
	}
}

func (e *emitter) block(name, arg string) {
	e.out.WriteString(e.s.BlockStart)
	e.out.WriteByte(' ')
	e.out.WriteString(name)

	if arg != "" {
		e.out.WriteByte(' ')
		e.out.WriteString(arg)
	}

	e.out.WriteByte(' ')
	e.out.WriteString(e.s.BlockEnd)
}

func (e *emitter) variable(v *Variable) {
	done := e.mark(v.Span)

	e.out.WriteString(e.s.VariableStart)
	e.out.WriteByte(' ')
	e.out.WriteString(v.Expr)
	e.out.WriteByte(' ')
	e.out.WriteString(e.s.VariableEnd)

	done()
}
