package lang

// Syntax holds the delimiter strings of the directive grammar.
//
// The defaults match the common brace syntax: directives are delimited
// by "{%" and "%}", substitutions by "{{" and "}}", and comments by
// "{#" and "#}". All delimiters must be non-empty and mutually
// distinguishable by their first two bytes; the lexer dispatches on the
// longest match at each position.
type Syntax struct {
	// BlockStart and BlockEnd delimit directive spans.
	BlockStart string
	BlockEnd   string

	// VariableStart and VariableEnd delimit substitution spans.
	VariableStart string
	VariableEnd   string

	// CommentStart and CommentEnd delimit single-line comments. The
	// lexer rejects a newline between them.
	CommentStart string
	CommentEnd   string
}

// DefaultSyntax returns the standard delimiter set.
func DefaultSyntax() Syntax {
	return Syntax{
		BlockStart:    "{%",
		BlockEnd:      "%}",
		VariableStart: "{{",
		VariableEnd:   "}}",
		CommentStart:  "{#",
		CommentEnd:    "#}",
	}
}

// Directive names with grammatical meaning to the lexer and builder.
// Conditional and loop keywords delimit branches; the raw markers
// suspend interpretation entirely; the comment pair delimits the
// multiline comment form; the option name carries an in-template
// compile option.
const (
	kwIf      = "if"
	kwElif    = "elif"
	kwElse    = "else"
	kwEndif   = "endif"
	kwFor     = "for"
	kwEmpty   = "empty"
	kwEndfor  = "endfor"
	kwComment = "comment"
	kwEndcom  = "endcomment"
	kwRaw     = "!raw"
	kwEndraw  = "!endraw"
	kwOption  = "!"
)

// markup comment delimiters
const (
	markupCommentStart = "<!--"
	markupCommentEnd   = "-->"
)
