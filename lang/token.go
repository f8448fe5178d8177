package lang

import (
	"fmt"
)

// Position identifies a location in source text.
type Position struct {
	Offset int `yaml:"offset"` // byte offset from the start of input
	Line   int `yaml:"line"`   // 1-based line number
	Column int `yaml:"column"` // 1-based column number
}

// String returns the position in line:column form.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span marks a contiguous region of source text.
// End is exclusive: the region covers input[Start.Offset:End.Offset].
type Span struct {
	Start Position `yaml:"start"`
	End   Position `yaml:"end"`
}

// String returns the span in start-end form.
func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool {
	return s.Start == Position{} && s.End == Position{}
}

// Kind discriminates the lexical classes produced by the lexer.
//
//go:generate go tool stringer -type=Kind -trimprefix=Kind
type Kind uint8

const (
	// KindText is a literal run of output text.
	KindText Kind = iota
	// KindComment is a language comment, either single-line or the
	// multiline block form. Comments never reach the output.
	KindComment
	// KindMarkupComment is a markup comment, preserved verbatim.
	KindMarkupComment
	// KindVariable is a deferred substitution span. Value holds the
	// expression text.
	KindVariable
	// KindDirective is a control-flow span. Name holds the directive
	// name and Value the remaining argument text.
	KindDirective
	// KindRawBlock is a raw-escape region. Value holds the payload
	// between the markers, byte-for-byte.
	KindRawBlock
	// KindTagOpenStart begins a markup tag header. Name holds the tag
	// name.
	KindTagOpenStart
	// KindTagAttr is one attribute inside a tag header. Name holds the
	// attribute name and Value the raw value text with quotes intact,
	// or the empty string for bare attributes.
	KindTagAttr
	// KindTagOpenEnd terminates a tag header.
	KindTagOpenEnd
	// KindTagSelfClose terminates a tag header and closes the element.
	KindTagSelfClose
	// KindTagClose is a markup closing tag. Name holds the tag name.
	KindTagClose
	// KindEOF marks the end of input.
	KindEOF
)

// Token is one lexical unit of hybrid source, immutable once produced.
//
// Text always holds the verbatim source text of the token. Name and
// Value are decoded conveniences whose meaning depends on Kind; see the
// Kind constants for details.
type Token struct {
	Kind  Kind
	Text  string
	Name  string
	Value string
	Span  Span
}

// String returns a compact description of the token for logs and tests.
func (t Token) String() string {
	switch t.Kind {
	case KindDirective, KindTagOpenStart, KindTagClose:
		return fmt.Sprintf("%s(%s)@%s", t.Kind, t.Name, t.Span.Start)
	case KindTagAttr:
		return fmt.Sprintf("%s(%s=%s)@%s", t.Kind, t.Name, t.Value, t.Span.Start)
	default:
		return fmt.Sprintf("%s@%s", t.Kind, t.Span.Start)
	}
}
