package lang

import "strings"

// Void element names per the HTML living standard. Void elements never
// take a closing tag and are never pushed onto the markup stack.
var defaultVoidTags = map[string]struct{}{
	"area":   {},
	"base":   {},
	"br":     {},
	"col":    {},
	"embed":  {},
	"hr":     {},
	"img":    {},
	"input":  {},
	"link":   {},
	"meta":   {},
	"param":  {},
	"source": {},
	"track":  {},
	"wbr":    {},
}

// Raw-text element names. Their content is lexed as text: markup tags
// inside them are literal, though directive, substitution, and comment
// spans are still recognized.
var defaultRawTextTags = map[string]struct{}{
	"script": {},
	"style":  {},
}

// Verbatim element names. Whitespace inside them is significant and
// exempt from compression.
var defaultVerbatimTags = map[string]struct{}{
	"pre":      {},
	"textarea": {},
	"script":   {},
	"style":    {},
}

// tagTable answers element content-model queries for one compilation,
// folding any configured override names into the defaults.
type tagTable struct {
	void     map[string]struct{}
	rawText  map[string]struct{}
	verbatim map[string]struct{}
}

func makeTagTable(voidTags, rawTags []string) tagTable {
	t := tagTable{
		void:     defaultVoidTags,
		rawText:  defaultRawTextTags,
		verbatim: defaultVerbatimTags,
	}

	if len(voidTags) > 0 {
		t.void = extend(defaultVoidTags, voidTags)
	}

	// Raw overrides exempt an element from nesting rules entirely, so
	// they are both raw-text and verbatim.
	if len(rawTags) > 0 {
		t.rawText = extend(defaultRawTextTags, rawTags)
		t.verbatim = extend(defaultVerbatimTags, rawTags)
	}

	return t
}

func extend(base map[string]struct{}, names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(base)+len(names))
	for name := range base {
		m[name] = struct{}{}
	}

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			m[name] = struct{}{}
		}
	}

	return m
}

func (t tagTable) isVoid(name string) bool {
	_, ok := t.void[strings.ToLower(name)]

	return ok
}

func (t tagTable) isRawText(name string) bool {
	_, ok := t.rawText[strings.ToLower(name)]

	return ok
}

func (t tagTable) isVerbatim(name string) bool {
	_, ok := t.verbatim[strings.ToLower(name)]

	return ok
}
