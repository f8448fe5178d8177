package lang

import (
	"strings"
	"unicode"
)

// lexMode selects the scanning rules in effect at the current input
// position.
type lexMode uint8

const (
	// modeData scans ordinary content: text, tags, comments, and
	// template spans.
	modeData lexMode = iota

	// modeHeader scans the inside of an open tag: attributes, template
	// spans, and the header terminator.
	modeHeader

	// modeRaw scans the content of a raw-text element: everything is
	// text except template spans and the matching close tag.
	modeRaw
)

// lexMark is a snapshot of the mode-relevant lexer state, taken when a
// branching directive opens so that each alternative branch is scanned
// from the same starting context.
type lexMark struct {
	hdr  string
	raw  string
	mode lexMode
}

// lexer splits source text into a flat token stream. Directives that
// branch push a state snapshot: separators restore it, so alternatives
// re-scan from a common context, and the close token adopts the final
// branch's end state.
type lexer struct {
	src  string
	opts options
	tags tagTable

	// hot holds the bytes that can begin a non-text token, so text
	// runs advance with a single scan.
	hot string

	pos  int
	line int
	col  int

	mode lexMode
	hdr  string   // tag name of the open header
	at   Position // where the open header began
	raw  string   // element name that entered raw-text content

	marks []lexMark
	toks  []Token
}

func newLexer(src string, opts options) *lexer {
	return &lexer{
		src:  src,
		opts: opts,
		tags: makeTagTable(opts.voidTags, opts.rawTags),
		hot:  hotBytes(opts.syntax),
		line: 1,
		col:  1,
	}
}

// run scans the entire source. It stops at the first malformed span;
// unclosed elements and directives are not its concern, they surface
// with better context downstream.
func (lx *lexer) run() ([]Token, error) {
	for lx.pos < len(lx.src) {
		var err error

		switch lx.mode {
		case modeHeader:
			err = lx.headerToken()
		case modeRaw:
			err = lx.rawContent()
		default:
			err = lx.dataContent()
		}

		if err != nil {
			return nil, err
		}
	}

	if lx.mode == modeHeader {
		return nil, lx.lexError("unterminated tag", lx.at)
	}

	pos := lx.mark()
	lx.emit(Token{Kind: KindEOF, Span: Span{Start: pos, End: pos}})

	return lx.toks, nil
}

func hotBytes(s Syntax) string {
	hot := "<"

	for _, m := range []string{s.BlockStart, s.VariableStart, s.CommentStart} {
		if m != "" && strings.IndexByte(hot, m[0]) < 0 {
			hot += string(m[0])
		}
	}

	return hot
}

func (lx *lexer) mark() Position {
	return Position{Offset: lx.pos, Line: lx.line, Column: lx.col}
}

func (lx *lexer) advance(n int) {
	for _, r := range lx.src[lx.pos : lx.pos+n] {
		if r == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
	}

	lx.pos += n
}

func (lx *lexer) atPrefix(p string) bool {
	return strings.HasPrefix(lx.src[lx.pos:], p)
}

func (lx *lexer) emit(t Token) { lx.toks = append(lx.toks, t) }

// text emits the literal run from start up to the current position,
// if any.
func (lx *lexer) text(start Position) {
	if lx.pos > start.Offset {
		lx.emit(Token{
			Kind: KindText,
			Text: lx.src[start.Offset:lx.pos],
			Span: Span{Start: start, End: lx.mark()},
		})
	}
}

func (lx *lexer) lexError(reason string, start Position) error {
	return &LexError{
		Reason: reason,
		Span:   Span{Start: start, End: lx.mark()},
		Source: lx.src,
	}
}

// dataContent scans one text run and the non-text token that ends it.
func (lx *lexer) dataContent() error {
	start := lx.mark()

	for {
		rel := strings.IndexAny(lx.src[lx.pos:], lx.hot)
		if rel < 0 {
			lx.advance(len(lx.src) - lx.pos)
			lx.text(start)

			return nil
		}

		lx.advance(rel)

		switch {
		case lx.atPrefix(lx.opts.syntax.CommentStart):
			lx.text(start)

			return lx.comment()
		case lx.atPrefix(lx.opts.syntax.BlockStart):
			lx.text(start)

			return lx.block()
		case lx.atPrefix(lx.opts.syntax.VariableStart):
			lx.text(start)

			return lx.variable()
		case lx.atPrefix(markupCommentStart):
			lx.text(start)

			return lx.markupComment()
		case lx.atPrefix("</"):
			lx.text(start)

			return lx.closeTag()
		case lx.atOpenTag():
			lx.text(start)

			return lx.openTag()
		default:
			// A bare "<" or delimiter byte is literal text.
			lx.advance(1)
		}
	}
}

// rawContent scans inside a raw-text element: only template spans and
// the element's own close tag end the text run. Reaching end of input
// here is not a scan error; the unclosed element is reported with its
// open-tag span downstream.
func (lx *lexer) rawContent() error {
	start := lx.mark()

	for {
		rel := strings.IndexAny(lx.src[lx.pos:], lx.hot)
		if rel < 0 {
			lx.advance(len(lx.src) - lx.pos)
			lx.text(start)

			return nil
		}

		lx.advance(rel)

		switch {
		case lx.atPrefix(lx.opts.syntax.CommentStart):
			lx.text(start)

			return lx.comment()
		case lx.atPrefix(lx.opts.syntax.BlockStart):
			lx.text(start)

			return lx.block()
		case lx.atPrefix(lx.opts.syntax.VariableStart):
			lx.text(start)

			return lx.variable()
		case lx.atPrefix("</") && lx.atRawClose():
			lx.text(start)

			return lx.rawClose()
		default:
			lx.advance(1)
		}
	}
}

// atRawClose peeks for a close tag naming the raw-text element.
func (lx *lexer) atRawClose() bool {
	rest := lx.src[lx.pos+2:]
	if len(rest) < len(lx.raw) || !strings.EqualFold(rest[:len(lx.raw)], lx.raw) {
		return false
	}

	rest = rest[len(lx.raw):]
	for i := range len(rest) {
		switch rest[i] {
		case ' ', '\t', '\n', '\r', '\f':
		case '>':
			return true
		default:
			return false
		}
	}

	return false
}

func (lx *lexer) rawClose() error {
	start := lx.mark()
	lx.advance(2)
	name := lx.scanName()
	lx.skipSpace()
	lx.advance(1) // '>' verified by atRawClose

	lx.emit(Token{
		Kind: KindTagClose,
		Text: lx.src[start.Offset:lx.pos],
		Name: name,
		Span: Span{Start: start, End: lx.mark()},
	})

	lx.mode = modeData
	lx.raw = ""

	return nil
}

func (lx *lexer) atOpenTag() bool {
	return lx.pos+1 < len(lx.src) &&
		lx.src[lx.pos] == '<' && isNameStart(lx.src[lx.pos+1])
}

func (lx *lexer) openTag() error {
	start := lx.mark()
	lx.advance(1)
	name := lx.scanName()

	lx.emit(Token{
		Kind: KindTagOpenStart,
		Text: lx.src[start.Offset:lx.pos],
		Name: name,
		Span: Span{Start: start, End: lx.mark()},
	})

	lx.mode = modeHeader
	lx.hdr = name
	lx.at = start

	return nil
}

func (lx *lexer) closeTag() error {
	start := lx.mark()
	lx.advance(2)

	name := lx.scanName()
	if name == "" {
		return lx.lexError("malformed close tag", start)
	}

	lx.skipSpace()

	if lx.pos >= len(lx.src) || lx.src[lx.pos] != '>' {
		return lx.lexError("malformed close tag", start)
	}

	lx.advance(1)

	lx.emit(Token{
		Kind: KindTagClose,
		Text: lx.src[start.Offset:lx.pos],
		Name: name,
		Span: Span{Start: start, End: lx.mark()},
	})

	return nil
}

// headerToken scans one token inside an open tag.
func (lx *lexer) headerToken() error {
	lx.skipSpace()

	if lx.pos >= len(lx.src) {
		return lx.lexError("unterminated tag", lx.at)
	}

	switch {
	case lx.atPrefix(lx.opts.syntax.CommentStart):
		return lx.comment()
	case lx.atPrefix(lx.opts.syntax.BlockStart):
		return lx.block()
	case lx.atPrefix(lx.opts.syntax.VariableStart):
		return lx.variable()
	case lx.atPrefix("/>"):
		start := lx.mark()
		lx.advance(2)
		lx.emit(Token{
			Kind: KindTagSelfClose,
			Text: "/>",
			Name: lx.hdr,
			Span: Span{Start: start, End: lx.mark()},
		})
		lx.mode = modeData
		lx.hdr = ""

		return nil
	case lx.src[lx.pos] == '>':
		start := lx.mark()
		lx.advance(1)
		lx.emit(Token{
			Kind: KindTagOpenEnd,
			Text: ">",
			Name: lx.hdr,
			Span: Span{Start: start, End: lx.mark()},
		})

		if lx.tags.isRawText(lx.hdr) {
			lx.mode = modeRaw
			lx.raw = lx.hdr
		} else {
			lx.mode = modeData
		}

		lx.hdr = ""

		return nil
	case lx.src[lx.pos] == '/':
		return lx.lexError("malformed tag", lx.mark())
	default:
		return lx.attribute()
	}
}

func (lx *lexer) attribute() error {
	start := lx.mark()

	name := lx.scanAttrName()
	if name == "" {
		return lx.lexError("malformed tag", start)
	}

	lx.skipSpace()

	value := ""

	if lx.pos < len(lx.src) && lx.src[lx.pos] == '=' {
		lx.advance(1)
		lx.skipSpace()

		var err error
		if value, err = lx.attrValue(start); err != nil {
			return err
		}
	}

	lx.emit(Token{
		Kind:  KindTagAttr,
		Text:  lx.src[start.Offset:lx.pos],
		Name:  name,
		Value: value,
		Span:  Span{Start: start, End: lx.mark()},
	})

	return nil
}

// attrValue scans a quoted or unquoted attribute value, returning it
// with any quotes intact.
func (lx *lexer) attrValue(start Position) (string, error) {
	if lx.pos >= len(lx.src) {
		return "", lx.lexError("missing attribute value", start)
	}

	if q := lx.src[lx.pos]; q == '"' || q == '\'' {
		from := lx.pos
		rel := strings.IndexByte(lx.src[lx.pos+1:], q)

		if rel < 0 {
			return "", lx.lexError("unterminated attribute value", start)
		}

		lx.advance(rel + 2)

		return lx.src[from:lx.pos], nil
	}

	from := lx.pos

	for lx.pos < len(lx.src) && isUnquotedValueByte(lx.src[lx.pos]) {
		lx.advance(1)
	}

	if lx.pos == from {
		return "", lx.lexError("missing attribute value", start)
	}

	return lx.src[from:lx.pos], nil
}

// comment scans a single-line template comment. The original grammar
// forbids newlines inside it; the multiline form is the comment block
// directive.
func (lx *lexer) comment() error {
	start := lx.mark()
	lx.advance(len(lx.opts.syntax.CommentStart))

	rel := strings.Index(lx.src[lx.pos:], lx.opts.syntax.CommentEnd)
	if rel < 0 {
		return lx.lexError("unterminated comment", start)
	}

	if strings.Contains(lx.src[lx.pos:lx.pos+rel], "\n") {
		return lx.lexError("newline in comment", start)
	}

	lx.advance(rel + len(lx.opts.syntax.CommentEnd))

	lx.emit(Token{
		Kind: KindComment,
		Text: lx.src[start.Offset:lx.pos],
		Span: Span{Start: start, End: lx.mark()},
	})

	return nil
}

func (lx *lexer) markupComment() error {
	start := lx.mark()
	lx.advance(len(markupCommentStart))

	rel := strings.Index(lx.src[lx.pos:], markupCommentEnd)
	if rel < 0 {
		return lx.lexError("unterminated markup comment", start)
	}

	lx.advance(rel + len(markupCommentEnd))

	lx.emit(Token{
		Kind: KindMarkupComment,
		Text: lx.src[start.Offset:lx.pos],
		Span: Span{Start: start, End: lx.mark()},
	})

	return nil
}

func (lx *lexer) variable() error {
	start := lx.mark()
	lx.advance(len(lx.opts.syntax.VariableStart))
	from := lx.pos

	rel := spanEnd(lx.src[lx.pos:], lx.opts.syntax.VariableEnd)
	if rel < 0 {
		return lx.lexError("unterminated substitution", start)
	}

	lx.advance(rel + len(lx.opts.syntax.VariableEnd))

	lx.emit(Token{
		Kind:  KindVariable,
		Text:  lx.src[start.Offset:lx.pos],
		Value: strings.TrimSpace(lx.src[from : from+rel]),
		Span:  Span{Start: start, End: lx.mark()},
	})

	return nil
}

// block scans one directive span and dispatches the forms the scanner
// itself consumes: comment blocks and raw blocks.
func (lx *lexer) block() error {
	start := lx.mark()
	lx.advance(len(lx.opts.syntax.BlockStart))
	from := lx.pos

	rel := spanEnd(lx.src[lx.pos:], lx.opts.syntax.BlockEnd)
	if rel < 0 {
		return lx.lexError("unterminated directive", start)
	}

	lx.advance(rel + len(lx.opts.syntax.BlockEnd))

	name, arg := splitDirective(lx.src[from : from+rel])

	switch name {
	case "":
		return lx.lexError("missing directive name", start)
	case kwComment:
		return lx.commentBlock(start)
	case kwRaw:
		if lx.mode == modeHeader {
			return lx.lexError("raw block inside tag", start)
		}

		return lx.rawBlock(start)
	case kwEndraw:
		return lx.lexError("raw block end without start", start)
	case kwIf, kwFor:
		lx.marks = append(lx.marks, lexMark{mode: lx.mode, hdr: lx.hdr, raw: lx.raw})
	case kwElif, kwElse, kwEmpty:
		// Re-scan the next branch from the same context the directive
		// opened in. Underflow is left for the tree builder to report.
		if n := len(lx.marks); n > 0 {
			lx.restore(lx.marks[n-1])
		}
	case kwEndif, kwEndfor:
		// The final branch's end state carries forward.
		if n := len(lx.marks); n > 0 {
			lx.marks = lx.marks[:n-1]
		}
	case kwOption:
		// Settings that change scanning take effect from here on.
		// Unknown options are reported once the stream is rebuilt.
		if opt, err := Setting(arg); err == nil {
			lx.opts = opt(lx.opts)
			lx.tags = makeTagTable(lx.opts.voidTags, lx.opts.rawTags)
		}
	}

	lx.emit(Token{
		Kind:  KindDirective,
		Text:  lx.src[start.Offset:lx.pos],
		Name:  name,
		Value: arg,
		Span:  Span{Start: start, End: lx.mark()},
	})

	return nil
}

func (lx *lexer) restore(m lexMark) {
	lx.mode = m.mode
	lx.hdr = m.hdr
	lx.raw = m.raw
}

// commentBlock consumes everything through the matching end-comment
// directive and emits the whole region as one comment token.
func (lx *lexer) commentBlock(start Position) error {
	for {
		rel := strings.Index(lx.src[lx.pos:], lx.opts.syntax.BlockStart)
		if rel < 0 {
			return lx.lexError("unterminated comment block", start)
		}

		lx.advance(rel + len(lx.opts.syntax.BlockStart))

		end := strings.Index(lx.src[lx.pos:], lx.opts.syntax.BlockEnd)
		if end < 0 {
			return lx.lexError("unterminated comment block", start)
		}

		name, _ := splitDirective(lx.src[lx.pos : lx.pos+end])
		lx.advance(end + len(lx.opts.syntax.BlockEnd))

		if name == kwEndcom {
			break
		}
	}

	lx.emit(Token{
		Kind: KindComment,
		Text: lx.src[start.Offset:lx.pos],
		Span: Span{Start: start, End: lx.mark()},
	})

	return nil
}

// rawBlock consumes everything through the matching end marker. The
// payload between the markers is preserved byte-for-byte.
func (lx *lexer) rawBlock(start Position) error {
	from := lx.pos

	for {
		rel := strings.Index(lx.src[lx.pos:], lx.opts.syntax.BlockStart)
		if rel < 0 {
			return lx.lexError("unterminated raw block", start)
		}

		payload := lx.src[from : lx.pos+rel]
		lx.advance(rel + len(lx.opts.syntax.BlockStart))

		end := strings.Index(lx.src[lx.pos:], lx.opts.syntax.BlockEnd)
		if end < 0 {
			return lx.lexError("unterminated raw block", start)
		}

		name, _ := splitDirective(lx.src[lx.pos : lx.pos+end])
		lx.advance(end + len(lx.opts.syntax.BlockEnd))

		if name != kwEndraw {
			continue
		}

		lx.emit(Token{
			Kind:  KindRawBlock,
			Text:  lx.src[start.Offset:lx.pos],
			Value: payload,
			Span:  Span{Start: start, End: lx.mark()},
		})

		return nil
	}
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case ' ', '\t', '\n', '\r', '\f':
			lx.advance(1)
		default:
			return
		}
	}
}

func (lx *lexer) scanName() string {
	from := lx.pos

	if lx.pos < len(lx.src) && isNameStart(lx.src[lx.pos]) {
		lx.advance(1)

		for lx.pos < len(lx.src) && isNameByte(lx.src[lx.pos]) {
			lx.advance(1)
		}
	}

	return lx.src[from:lx.pos]
}

func (lx *lexer) scanAttrName() string {
	from := lx.pos

	for lx.pos < len(lx.src) && isAttrNameByte(lx.src[lx.pos]) {
		lx.advance(1)
	}

	return lx.src[from:lx.pos]
}

// spanEnd locates end within src, treating quoted runs as expression
// content: an end delimiter inside '...' or "..." does not terminate
// the span. Returns -1 when the span or a quoted run never closes.
func spanEnd(src, end string) int {
	for i := 0; i < len(src); {
		switch b := src[i]; {
		case b == '\'' || b == '"':
			rel := strings.IndexByte(src[i+1:], b)
			if rel < 0 {
				return -1
			}

			i += rel + 2
		case strings.HasPrefix(src[i:], end):
			return i
		default:
			i++
		}
	}

	return -1
}

func splitDirective(inner string) (name, arg string) {
	inner = strings.TrimSpace(inner)

	if i := strings.IndexFunc(inner, unicode.IsSpace); i >= 0 {
		return inner[:i], strings.TrimSpace(inner[i:])
	}

	return inner, ""
}

func isNameStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isNameByte(b byte) bool {
	return isNameStart(b) || b >= '0' && b <= '9' ||
		b == '-' || b == ':' || b == '_' || b == '.'
}

func isAttrNameByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '=', '>', '/', '"', '\'', '<', '{', '}':
		return false
	}

	return true
}

func isUnquotedValueByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '>', '"', '\'', '<', '=', '`', '{', '}':
		return false
	}

	return true
}
