package lang

// Node is one vertex of a template tree. The concrete variants are
// [Text], [Comment], [Variable], [Element], [Directive], [RawBlock],
// [AssetRegion], and [StrayClose]; every pass switches exhaustively
// over them so that a new variant cannot be mishandled silently.
type Node interface {
	nodeSpan() Span
}

// HeaderPart is one entry of an element header: a static attribute
// ([Attr]), a conditional attribute group ([Directive] whose branches
// carry header parts), or a substitution ([Variable]).
type HeaderPart interface {
	headerPart()
}

// Tree is the root of one template.
type Tree struct {
	// Name identifies the source in diagnostics, usually a file path.
	Name string

	Nodes []Node
}

// Text is a run of literal output text.
type Text struct {
	Text string
	Span Span
}

// Comment is a markup comment. It is preserved verbatim, delimiters
// included, and is exempt from whitespace compression.
type Comment struct {
	Text string
	Span Span
}

// Variable is a substitution span. Expr holds the expression text with
// the delimiters and surrounding space removed.
type Variable struct {
	Expr string
	Span Span
}

// Element is a markup element. Header holds its attributes in source
// order, static and conditional parts interleaved.
type Element struct {
	Tag      string
	Header   []HeaderPart
	Children []Node

	// SelfClosing records an explicit self-closing open tag. Void
	// elements never take a close tag regardless.
	SelfClosing bool
	Void        bool

	// Unified marks an element synthesized by branch unification; its
	// OpenSpan then covers the whole originating directive.
	Unified bool

	OpenSpan Span

	// CloseSpan is nil for void and self-closing elements, and for
	// elements left unclosed when validation is disabled.
	CloseSpan *Span
}

// Directive is a template instruction. Structural kinds carry the
// branch bodies; custom and opaque kinds are leaves with a single
// empty branch holding the argument text.
type Directive struct {
	Name     string
	Kind     DirectiveKind
	Branches []*Branch
	Span     Span
}

// Branch is one alternative of a directive. At most one branch of a
// directive is active per evaluation, so branches are mutually
// exclusive by construction.
type Branch struct {
	// Keyword is the token that opened the branch: the directive name
	// for the first branch, or a separator such as "elif", "else", or
	// "empty".
	Keyword string

	// Arg is the raw argument text: the guard expression for "if" and
	// "elif", the binding clause for "for", empty for "else" and
	// "empty".
	Arg string

	Children []Node

	// Parts, Completed, and SelfClose describe a branch of a directive
	// that begins inside an element header: the header parts the
	// branch contributes, and whether it also terminated the header.
	Parts     []HeaderPart
	Completed bool
	SelfClose bool

	Span Span
}

// Attr is one attribute of an element header. Value preserves the
// source quoting; it is empty for a bare attribute. An attribute that
// survives branch unification stays inside its branch of a header
// [Directive], which is what tags it with the branch guard.
type Attr struct {
	Name  string
	Value string
	Span  Span
}

// RawBlock is a region excluded from all interpretation. Text holds
// the enclosed bytes with the escape markers removed; they reach the
// output byte-for-byte.
type RawBlock struct {
	Text string
	Span Span
}

// AssetRegion wraps an inline script or style element after
// resolution so the merge pass can treat adjacent regions uniformly.
type AssetRegion struct {
	Kind AssetKind
	Elem *Element

	// Mergeable is false when the element carries attributes beyond a
	// recognized type, which merging would discard.
	Mergeable bool
}

// StrayClose is a close tag with no matching open in its own branch.
// The resolver either claims it during unification or reports it; with
// validation disabled it serializes verbatim.
type StrayClose struct {
	Tag  string
	Span Span
}

//go:generate go tool stringer -type=DirectiveKind -trimprefix=Dir
type DirectiveKind uint8

const (
	DirConditional DirectiveKind = iota
	DirLoop
	DirCustom
	DirOpaque
)

//go:generate go tool stringer -type=AssetKind -trimprefix=Asset
type AssetKind uint8

const (
	AssetScript AssetKind = iota
	AssetStyle
)

func (n *Text) nodeSpan() Span     { return n.Span }
func (n *Comment) nodeSpan() Span  { return n.Span }
func (n *Variable) nodeSpan() Span { return n.Span }
func (n *RawBlock) nodeSpan() Span { return n.Span }

func (n *Element) nodeSpan() Span {
	s := Span{Start: n.OpenSpan.Start, End: n.OpenSpan.End}
	if n.CloseSpan != nil {
		s.End = n.CloseSpan.End
	} else if len(n.Children) > 0 {
		s.End = n.Children[len(n.Children)-1].nodeSpan().End
	}

	return s
}

func (n *Directive) nodeSpan() Span   { return n.Span }
func (n *AssetRegion) nodeSpan() Span { return n.Elem.nodeSpan() }
func (n *StrayClose) nodeSpan() Span  { return n.Span }

func (*Attr) headerPart()      {}
func (*Directive) headerPart() {}
func (*Variable) headerPart()  {}
