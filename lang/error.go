package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Error carries a diagnostic category with an optional cause and log
// attributes. The package sentinels below are the categories a compile
// can fail with; call sites attach context through [Error.Wrap] and
// [Error.With], which copy rather than mutate so the sentinels stay
// pristine.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError lifts err into an *Error. When err already carries one
// anywhere in its chain, that instance is returned unchanged.
func WrapError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

func (e *Error) Error() string {
	switch {
	case e.msg == "" && e.err == nil:
		return ""
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches any copy derived from the same sentinel, so wrapped
// diagnostics still satisfy errors.Is against their category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue renders the error as a group for structured logging. A cause
// that is itself a LogValuer expands in place; anything else is
// flattened to its message.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	switch cause := e.err.(type) {
	case nil:
	case slog.LogValuer:
		attrs = append(attrs, slog.Any("cause", cause))
	default:
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e recording err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With returns a copy of e carrying additional log attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = slices.Concat(e.attrs, attrs)

	return &c
}

// Compilation failure categories.
var (
	ErrLex           = NewError("lexical error")
	ErrStructure     = NewError("malformed directive structure")
	ErrBalance       = NewError("unbalanced markup")
	ErrConfig        = NewError("invalid configuration")
	ErrReadInput     = NewError("failed to read input")
	ErrGuardCompile  = NewError("guard compilation failed")
	ErrGuardEvaluate = NewError("guard evaluation failed")
)

// LexError reports a malformed or unterminated source span. Compiling
// stops at the first one; no output is produced.
type LexError struct {
	Reason string
	Span   Span
	Source string // The original source input
}

func (e *LexError) Error() string {
	return describe("lexical error", e.Span.Start, e.Reason) +
		snippet(e.Source, e.Span.Start)
}

// Unwrap reports the sentinel for errors.Is.
func (e *LexError) Unwrap() error { return ErrLex }

// StructureError reports a directive nesting violation: a branch
// separator or close token that does not belong to the innermost open
// directive. These are fatal at tree-build time.
type StructureError struct {
	Reason   string
	Found    string // keyword encountered
	Expected string // close keyword required here, if any
	Open     string // keyword of the innermost open directive, if any
	OpenSpan Span
	Span     Span
	Source   string
}

func (e *StructureError) Error() string {
	reason := e.Reason

	if e.Open != "" {
		reason += " (" + directiveToken(e.Open) + " opened at " +
			e.OpenSpan.Start.String() + ")"
	}

	return describe("malformed directive structure", e.Span.Start, reason) +
		snippet(e.Source, e.Span.Start)
}

// Unwrap reports the sentinel for errors.Is.
func (e *StructureError) Unwrap() error { return ErrStructure }

// Delta summarizes the structural effect of one directive branch on
// the markup stack: the enclosing elements it closes, the elements it
// leaves open, and whether it finishes a pending open tag.
type Delta struct {
	Closes []string
	Opens  []string
	Header bool
}

// Depth reports the net nesting depth change of the branch.
func (d Delta) Depth() int { return len(d.Opens) - len(d.Closes) }

// String renders the delta for diagnostics.
func (d Delta) String() string {
	if len(d.Closes) == 0 && len(d.Opens) == 0 && !d.Header {
		return "balanced"
	}

	part := make([]string, 0, 3)

	if d.Header {
		part = append(part, "finishes the open tag")
	}

	if len(d.Closes) > 0 {
		part = append(part, "closes </"+strings.Join(d.Closes, ">, </")+">")
	}

	if len(d.Opens) > 0 {
		part = append(part, "leaves <"+strings.Join(d.Opens, ">, <")+"> open")
	}

	return strings.Join(part, ", ")
}

// BalanceError reports markup that cannot be reconciled across a
// directive's branches, a close tag that never matches an open, or an
// element left open at end of input.
type BalanceError struct {
	Reason string

	// Tag is set when a single element is at fault (stray close or
	// unclosed element).
	Tag string

	// Name, First, Branch, Expected, and Found are set when branches
	// of the named directive disagree: First is the reference branch,
	// Branch the offending one, with their respective deltas.
	Name     string
	First    string
	Branch   string
	Expected Delta
	Found    Delta

	Span   Span
	Source string
}

func (e *BalanceError) Error() string {
	reason := e.Reason

	switch {
	case e.Branch != "" && e.First != "":
		reason += ": " + directiveToken(e.First) + " " + e.Expected.String() +
			" (net depth " + strconv.Itoa(e.Expected.Depth()) + ") but " +
			directiveToken(e.Branch) + " " + e.Found.String() +
			" (net depth " + strconv.Itoa(e.Found.Depth()) + ")"
	case e.Branch != "":
		reason += ": " + directiveToken(e.Branch) + " " + e.Found.String() +
			" (net depth " + strconv.Itoa(e.Found.Depth()) + ")"
	}

	return describe("unbalanced markup", e.Span.Start, reason) +
		snippet(e.Source, e.Span.Start)
}

// Unwrap reports the sentinel for errors.Is.
func (e *BalanceError) Unwrap() error { return ErrBalance }

// ConfigError reports an unrecognized or malformed option, from the
// configuration set or from an option tag in the source. It is raised
// before any compilation output is produced.
type ConfigError struct {
	Option  string
	Suggest string // closest recognized option, if any

	// Span locates an in-source option tag; it is zero for options
	// rejected at configuration time.
	Span   Span
	Source string
}

func (e *ConfigError) Error() string {
	reason := "unknown option " + strconv.Quote(e.Option)
	if e.Suggest != "" {
		reason += " (did you mean " + strconv.Quote(e.Suggest) + "?)"
	}

	if e.Span.IsZero() {
		return "invalid configuration: " + reason
	}

	return describe("invalid configuration", e.Span.Start, reason) +
		snippet(e.Source, e.Span.Start)
}

// Unwrap reports the sentinel for errors.Is.
func (e *ConfigError) Unwrap() error { return ErrConfig }

// describe renders the common "<kind> at line L, column C: <reason>"
// error prefix.
func describe(kind string, pos Position, reason string) string {
	var buf strings.Builder

	buf.WriteString(kind)
	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(pos.Column))

	if reason != "" {
		buf.WriteString(": ")
		buf.WriteString(reason)
	}

	return buf.String()
}

// snippet renders the offending source line with a caret marking the
// error column. It returns "" when the source or position is
// unavailable.
func snippet(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	line := lines[pos.Line-1]

	var src strings.Builder

	// Print the line with line number
	src.WriteString("\n  ")
	src.WriteString(strconv.Itoa(pos.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// Print marker pointing to the column
	// Calculate the width needed for line number display
	lineNumWidth := len(strconv.Itoa(pos.Line))
	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", lineNumWidth+5)

	// Add spaces to reach the error column
	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	src.WriteString(padding + "^")

	return src.String()
}

// directiveToken renders a keyword in source syntax for messages.
func directiveToken(keyword string) string {
	return "{% " + keyword + " %}"
}
