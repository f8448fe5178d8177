package lang

import "strings"

// frameKind identifies what a builder stack frame collects into.
type frameKind uint8

const (
	frameRoot frameKind = iota
	frameElement
	frameBranch
)

type frame struct {
	kind frameKind

	elem *Element // frameElement: the open element

	// frameBranch: the open directive, its current branch, and the
	// element whose header the directive opened inside, if any.
	dir    *Directive
	branch *Branch
	hdr    *Element

	nodes []Node // frameRoot accumulator
}

// optionTag is an in-source option directive, recorded in order for
// the compiler to validate and apply.
type optionTag struct {
	arg  string
	span Span
}

type buildResult struct {
	nodes    []Node
	settings []optionTag
}

// builder assembles the token stream into a tree. Markup and directive
// nesting are tracked independently: a directive violation is fatal
// immediately, while a close tag that does not match the innermost
// open element in the same branch becomes a [StrayClose] leaf for the
// resolver to reconcile. An element opened inside one branch can only
// be closed inside that branch; the branch frame is a barrier.
type builder struct {
	src  string
	toks []Token
	opts options
	tags tagTable

	stack []*frame

	// hdr is the element whose open tag is being collected. marks
	// snapshots it per branching directive, mirroring the scanner, so
	// each branch collects from the same context and the final branch
	// decides whether the header completed.
	hdr   *Element
	marks []*Element

	settings []optionTag
}

func newBuilder(src string, toks []Token, opts options) *builder {
	return &builder{
		src:   src,
		toks:  toks,
		opts:  opts,
		tags:  makeTagTable(opts.voidTags, opts.rawTags),
		stack: []*frame{{kind: frameRoot}},
	}
}

func (b *builder) run() (*buildResult, error) {
	for _, t := range b.toks {
		var err error

		switch t.Kind {
		case KindText:
			b.append(&Text{Text: t.Text, Span: t.Span})
		case KindComment:
			// Dropped: comments never reach the output.
		case KindMarkupComment:
			b.append(&Comment{Text: t.Text, Span: t.Span})
		case KindVariable:
			v := &Variable{Expr: t.Value, Span: t.Span}
			if b.hdr != nil {
				b.placePart(v)
			} else {
				b.append(v)
			}
		case KindRawBlock:
			b.append(&RawBlock{Text: t.Value, Span: t.Span})
		case KindDirective:
			err = b.directive(t)
		case KindTagOpenStart:
			b.openElement(t)
		case KindTagAttr:
			b.placePart(&Attr{Name: t.Name, Value: t.Value, Span: t.Span})
		case KindTagOpenEnd:
			b.completeHeader(t)
		case KindTagSelfClose:
			b.selfClose(t)
		case KindTagClose:
			b.closeElement(t)
		case KindEOF:
		}

		if err != nil {
			return nil, err
		}
	}

	return b.finish()
}

func (b *builder) top() *frame { return b.stack[len(b.stack)-1] }

// append adds a node to the current container.
func (b *builder) append(n Node) {
	switch f := b.top(); f.kind {
	case frameElement:
		f.elem.Children = append(f.elem.Children, n)
	case frameBranch:
		f.branch.Children = append(f.branch.Children, n)
	default:
		f.nodes = append(f.nodes, n)
	}
}

// placePart adds a header part either to the open branch of a header
// directive or to the open element header itself.
func (b *builder) placePart(p HeaderPart) {
	if f := b.top(); f.kind == frameBranch && f.hdr != nil && f.hdr == b.hdr && !f.branch.Completed {
		f.branch.Parts = append(f.branch.Parts, p)

		return
	}

	b.hdr.Header = append(b.hdr.Header, p)
}

func (b *builder) openElement(t Token) {
	e := &Element{Tag: t.Name, Void: b.tags.isVoid(t.Name), OpenSpan: t.Span}
	b.append(e)
	b.hdr = e
}

func (b *builder) completeHeader(t Token) {
	e := b.hdr
	e.OpenSpan.End = t.Span.End
	b.hdr = nil

	if f := b.top(); f.kind == frameBranch && f.hdr == e && !f.branch.Completed {
		f.branch.Completed = true

		return
	}

	if !e.Void {
		b.stack = append(b.stack, &frame{kind: frameElement, elem: e})
	}
}

func (b *builder) selfClose(t Token) {
	e := b.hdr
	e.OpenSpan.End = t.Span.End
	b.hdr = nil

	if f := b.top(); f.kind == frameBranch && f.hdr == e && !f.branch.Completed {
		f.branch.Completed = true
		f.branch.SelfClose = true

		return
	}

	e.SelfClosing = true
}

// closeElement matches a close tag against the innermost open element
// of the current branch. Anything else is deferred as a [StrayClose]
// for the resolver: it may be the close of an element opened in a
// sibling branch.
func (b *builder) closeElement(t Token) {
	if f := b.top(); f.kind == frameElement && strings.EqualFold(f.elem.Tag, t.Name) {
		span := t.Span
		f.elem.CloseSpan = &span
		b.stack = b.stack[:len(b.stack)-1]

		return
	}

	b.append(&StrayClose{Tag: t.Name, Span: t.Span})
}

func (b *builder) directive(t Token) error {
	switch t.Name {
	case kwIf:
		b.openDirective(t, DirConditional)
	case kwFor:
		b.openDirective(t, DirLoop)
	case kwElif, kwElse, kwEmpty:
		return b.separator(t)
	case kwEndif:
		return b.closeDirective(t, DirConditional)
	case kwEndfor:
		return b.closeDirective(t, DirLoop)
	case kwOption:
		b.settings = append(b.settings, optionTag{arg: t.Value, span: t.Span})

		// Table-changing settings already steered the scanner; mirror
		// them here so void-element handling agrees. Validation of
		// unknown names happens once, in the compiler.
		if opt, err := Setting(t.Value); err == nil {
			b.opts = opt(b.opts)
			b.tags = makeTagTable(b.opts.voidTags, b.opts.rawTags)
		}
	default:
		kind := DirOpaque
		if _, ok := b.opts.registry.Lookup(t.Name); ok {
			kind = DirCustom
		}

		dir := &Directive{
			Name:     t.Name,
			Kind:     kind,
			Branches: []*Branch{{Keyword: t.Name, Arg: t.Value, Span: t.Span}},
			Span:     t.Span,
		}

		if b.hdr != nil {
			b.placePart(dir)
		} else {
			b.append(dir)
		}
	}

	return nil
}

func (b *builder) openDirective(t Token, kind DirectiveKind) {
	br := &Branch{Keyword: t.Name, Arg: t.Value, Span: t.Span}
	dir := &Directive{Name: t.Name, Kind: kind, Branches: []*Branch{br}, Span: t.Span}

	if b.hdr != nil {
		b.placePart(dir)
	} else {
		b.append(dir)
	}

	b.stack = append(b.stack, &frame{kind: frameBranch, dir: dir, branch: br, hdr: b.hdr})
	b.marks = append(b.marks, b.hdr)
}

// innermost unwinds any elements left open by the current branch and
// returns the innermost branch frame. The unwound elements stay in the
// tree without a close span; the resolver measures them as the
// branch's dangling opens.
func (b *builder) innermost(t Token) (*frame, error) {
	for i := len(b.stack) - 1; i > 0; i-- {
		if f := b.stack[i]; f.kind == frameBranch {
			b.stack = b.stack[:i+1]

			return f, nil
		}
	}

	return nil, &StructureError{
		Reason: "unexpected " + directiveToken(t.Name),
		Found:  t.Name,
		Span:   t.Span,
		Source: b.src,
	}
}

func (b *builder) separator(t Token) error {
	f, err := b.innermost(t)
	if err != nil {
		return err
	}

	if reason := separatorFault(t.Name, f); reason != "" {
		return &StructureError{
			Reason:   reason,
			Found:    t.Name,
			Expected: closeKeyword(f.dir.Kind),
			Open:     f.dir.Name,
			OpenSpan: f.dir.Branches[0].Span,
			Span:     t.Span,
			Source:   b.src,
		}
	}

	b.hdr = b.marks[len(b.marks)-1]

	br := &Branch{Keyword: t.Name, Arg: t.Value, Span: t.Span}
	f.dir.Branches = append(f.dir.Branches, br)
	f.branch = br
	f.dir.Span.End = t.Span.End

	return nil
}

// separatorFault reports why a branch separator is illegal in the
// innermost open directive, or "" when it is fine.
func separatorFault(name string, f *frame) string {
	switch name {
	case kwElif, kwElse:
		if f.dir.Kind != DirConditional {
			return "unexpected " + directiveToken(name) + " inside " + directiveToken(f.dir.Name)
		}

		if f.branch.Keyword == kwElse {
			if name == kwElse {
				return "duplicate " + directiveToken(kwElse)
			}

			return directiveToken(kwElif) + " after " + directiveToken(kwElse)
		}
	case kwEmpty:
		if f.dir.Kind != DirLoop {
			return "unexpected " + directiveToken(kwEmpty) + " inside " + directiveToken(f.dir.Name)
		}

		if f.branch.Keyword == kwEmpty {
			return "duplicate " + directiveToken(kwEmpty)
		}
	}

	return ""
}

func (b *builder) closeDirective(t Token, kind DirectiveKind) error {
	f, err := b.innermost(t)
	if err != nil {
		return err
	}

	if f.dir.Kind != kind {
		expected := closeKeyword(f.dir.Kind)

		return &StructureError{
			Reason:   "found " + directiveToken(t.Name) + ", expected " + directiveToken(expected),
			Found:    t.Name,
			Expected: expected,
			Open:     f.dir.Name,
			OpenSpan: f.dir.Branches[0].Span,
			Span:     t.Span,
			Source:   b.src,
		}
	}

	b.stack = b.stack[:len(b.stack)-1]
	b.marks = b.marks[:len(b.marks)-1]
	f.dir.Span.End = t.Span.End

	// The final branch decides whether the enclosing header completed.
	// When it did, the element body begins here; a sibling branch
	// frame of the same header inherits the completion instead.
	if f.hdr != nil && f.branch.Completed {
		if g := b.top(); g.kind == frameBranch && g.hdr == f.hdr && !g.branch.Completed {
			g.branch.Completed = true
			g.branch.SelfClose = f.branch.SelfClose
		} else if !f.branch.SelfClose && !f.hdr.Void {
			b.stack = append(b.stack, &frame{kind: frameElement, elem: f.hdr})
		}
	}

	return nil
}

func (b *builder) finish() (*buildResult, error) {
	for i := len(b.stack) - 1; i > 0; i-- {
		f := b.stack[i]
		if f.kind != frameBranch {
			continue
		}

		return nil, &StructureError{
			Reason:   "unclosed " + directiveToken(f.dir.Name),
			Found:    "end of input",
			Expected: closeKeyword(f.dir.Kind),
			Open:     f.dir.Name,
			OpenSpan: f.dir.Branches[0].Span,
			Span:     f.dir.Branches[0].Span,
			Source:   b.src,
		}
	}

	return &buildResult{nodes: b.stack[0].nodes, settings: b.settings}, nil
}

func closeKeyword(kind DirectiveKind) string {
	if kind == DirLoop {
		return kwEndfor
	}

	return kwEndif
}
