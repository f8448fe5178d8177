package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the tree in its native text form: the same canonical
// rendition the compiler emits.
func (t *Tree) Format(_ context.Context, w io.Writer, s Syntax) error {
	_, err := fmt.Fprintln(w, serialize(t.Nodes, s, nil))

	return err
}

// FormatJSON writes the tree structure as JSON.
func (t *Tree) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(t.ToMap(), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(t.ToMap())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the tree structure as YAML.
func (t *Tree) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, t.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// ToMap converts the tree to plain maps and slices for structural
// marshaling. Spans render in compact line:column form.
func (t *Tree) ToMap() map[string]any {
	return map[string]any{
		"name":  t.Name,
		"nodes": nodeMaps(t.Nodes),
	}
}

func nodeMaps(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeMap(n))
	}

	return out
}

func nodeMap(n Node) map[string]any {
	switch n := n.(type) {
	case *Text:
		return map[string]any{
			"kind": "text",
			"text": n.Text,
			"span": n.Span.String(),
		}
	case *Comment:
		return map[string]any{
			"kind": "comment",
			"text": n.Text,
			"span": n.Span.String(),
		}
	case *Variable:
		return map[string]any{
			"kind": "variable",
			"expr": n.Expr,
			"span": n.Span.String(),
		}
	case *RawBlock:
		return map[string]any{
			"kind": "raw",
			"text": n.Text,
			"span": n.Span.String(),
		}
	case *Element:
		return elementMap(n)
	case *Directive:
		return directiveMap(n)
	case *AssetRegion:
		return map[string]any{
			"kind":      "asset",
			"asset":     n.Kind.String(),
			"mergeable": n.Mergeable,
			"element":   elementMap(n.Elem),
		}
	case *StrayClose:
		return map[string]any{
			"kind": "close",
			"tag":  n.Tag,
			"span": n.Span.String(),
		}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func elementMap(e *Element) map[string]any {
	m := map[string]any{
		"kind": "element",
		"tag":  e.Tag,
		"span": e.nodeSpan().String(),
	}

	if len(e.Header) > 0 {
		m["header"] = partMaps(e.Header)
	}

	if len(e.Children) > 0 {
		m["children"] = nodeMaps(e.Children)
	}

	if e.SelfClosing {
		m["self_closing"] = true
	}

	if e.Void {
		m["void"] = true
	}

	if e.Unified {
		m["unified"] = true
	}

	return m
}

func directiveMap(d *Directive) map[string]any {
	branches := make([]any, 0, len(d.Branches))

	for _, br := range d.Branches {
		b := map[string]any{
			"keyword": br.Keyword,
			"span":    br.Span.String(),
		}

		if br.Arg != "" {
			b["arg"] = br.Arg
		}

		if len(br.Parts) > 0 {
			b["parts"] = partMaps(br.Parts)
		}

		if len(br.Children) > 0 {
			b["children"] = nodeMaps(br.Children)
		}

		branches = append(branches, b)
	}

	return map[string]any{
		"kind":     "directive",
		"name":     d.Name,
		"type":     d.Kind.String(),
		"branches": branches,
		"span":     d.Span.String(),
	}
}

func partMaps(parts []HeaderPart) []any {
	out := make([]any, 0, len(parts))

	for _, p := range parts {
		switch p := p.(type) {
		case *Attr:
			m := map[string]any{"name": p.Name}
			if p.Value != "" {
				m["value"] = p.Value
			}

			out = append(out, m)
		case *Directive:
			out = append(out, directiveMap(p))
		case *Variable:
			out = append(out, nodeMap(p))
		}
	}

	return out
}
