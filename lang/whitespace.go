package lang

import "strings"

// compress collapses every run of whitespace in text content to a
// single space, in place. Verbatim elements keep their interior
// untouched, as do asset regions, raw blocks, markup comments, and
// variables. Attribute values are never altered.
func compress(nodes []Node, tags tagTable) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			n.Text = collapse(n.Text)
		case *Element:
			if tags.isVerbatim(n.Tag) {
				continue
			}

			compress(n.Children, tags)
		case *Directive:
			for _, br := range n.Branches {
				compress(br.Children, tags)
			}
		case *AssetRegion, *Comment, *Variable, *RawBlock, *StrayClose:
		}
	}
}

// collapse rewrites runs of whitespace as single spaces. Already
// collapsed text is returned as-is, so recompiling compiled output
// does not reallocate.
func collapse(s string) string {
	if collapsed(s) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	pending := false

	for i := range len(s) {
		if isSpaceByte(s[i]) {
			pending = true

			continue
		}

		if pending {
			b.WriteByte(' ')

			pending = false
		}

		b.WriteByte(s[i])
	}

	if pending {
		b.WriteByte(' ')
	}

	return b.String()
}

func collapsed(s string) bool {
	for i := range len(s) {
		if !isSpaceByte(s[i]) {
			continue
		}

		if s[i] != ' ' || (i+1 < len(s) && isSpaceByte(s[i+1])) {
			return false
		}
	}

	return true
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}

	return false
}
