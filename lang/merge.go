package lang

import "strings"

// Attribute sets that keep an inline asset eligible for merging. A
// type attribute naming the classic script or stylesheet flavor is
// inert; anything else (id, media, nonce, module scripts) makes the
// element load-bearing on its own.
var (
	scriptTypes = map[string]bool{
		"":                       true,
		"text/javascript":        true,
		"application/javascript": true,
	}

	styleTypes = map[string]bool{
		"":         true,
		"text/css": true,
	}
)

// tagAssets wraps inline script and style elements so later passes
// and the serializer treat them as one unit. Tagging is
// unconditional; the merge options only control merging.
func tagAssets(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))

	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			n.Children = tagAssets(n.Children)

			if region := tagElement(n); region != nil {
				out = append(out, region)

				continue
			}

			out = append(out, n)
		case *Directive:
			for _, br := range n.Branches {
				br.Children = tagAssets(br.Children)
			}

			out = append(out, n)
		default:
			out = append(out, n)
		}
	}

	return out
}

// tagElement classifies one element. Scripts whose header carries a
// src attribute, or anything conditional that might, reference an
// external asset and stay plain elements.
func tagElement(e *Element) *AssetRegion {
	var kind AssetKind

	switch {
	case strings.EqualFold(e.Tag, "script"):
		for _, part := range e.Header {
			a, ok := part.(*Attr)
			if !ok || strings.EqualFold(a.Name, "src") {
				return nil
			}
		}

		kind = AssetScript
	case strings.EqualFold(e.Tag, "style"):
		kind = AssetStyle
	default:
		return nil
	}

	return &AssetRegion{Kind: kind, Elem: e, Mergeable: mergeableAsset(e, kind)}
}

func mergeableAsset(e *Element, kind AssetKind) bool {
	if e.CloseSpan == nil || e.SelfClosing {
		return false
	}

	types := scriptTypes
	if kind == AssetStyle {
		types = styleTypes
	}

	for _, part := range e.Header {
		a, ok := part.(*Attr)
		if !ok || !strings.EqualFold(a.Name, "type") {
			return false
		}

		if !types[strings.ToLower(attrText(a.Value))] {
			return false
		}
	}

	return true
}

// attrText strips the surrounding quotes an attribute value was
// written with.
func attrText(v string) string {
	if len(v) >= 2 {
		if q := v[0]; (q == '"' || q == '\'') && v[len(v)-1] == q {
			return v[1 : len(v)-1]
		}
	}

	return v
}

// mergeAssets combines adjacent mergeable regions of the same kind,
// joining their contents with one newline. Blank text between two
// merged regions is dropped with them; any other node breaks
// adjacency.
func mergeAssets(nodes []Node, opts options) []Node {
	out := make([]Node, 0, len(nodes))

	var (
		pending *AssetRegion
		blanks  []Node
	)

	flush := func() {
		if pending != nil {
			out = append(out, pending)
			pending = nil
		}

		out = append(out, blanks...)
		blanks = nil
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *AssetRegion:
			if !n.Mergeable || !mergeOn(n.Kind, opts) {
				flush()
				out = append(out, n)

				continue
			}

			if pending != nil && pending.Kind == n.Kind {
				pending.Elem.Children = append(pending.Elem.Children, &Text{Text: "\n"})
				pending.Elem.Children = append(pending.Elem.Children, n.Elem.Children...)
				blanks = nil

				continue
			}

			flush()
			pending = n
		case *Text:
			if pending != nil && blankText(n.Text) {
				blanks = append(blanks, n)

				continue
			}

			flush()
			out = append(out, n)
		case *Element:
			n.Children = mergeAssets(n.Children, opts)
			flush()
			out = append(out, n)
		case *Directive:
			for _, br := range n.Branches {
				br.Children = mergeAssets(br.Children, opts)
			}

			flush()
			out = append(out, n)
		case *Comment, *Variable, *RawBlock, *StrayClose:
			flush()
			out = append(out, n)
		default:
			flush()
			out = append(out, n)
		}
	}

	flush()

	return out
}

func mergeOn(kind AssetKind, opts options) bool {
	switch kind {
	case AssetScript:
		return opts.mergeScripts
	case AssetStyle:
		return opts.mergeStyles
	}

	return false
}

func blankText(s string) bool {
	for i := range len(s) {
		if !isSpaceByte(s[i]) {
			return false
		}
	}

	return true
}
