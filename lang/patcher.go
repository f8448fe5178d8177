package lang

import (
	"slices"
	"strings"

	"github.com/expr-lang/expr/ast"
)

// hyphenPatcher reconstructs hyphenated names from the subtraction
// chains expr-lang's parser produces for them.
//
// Constant maps usually come from YAML project files, where hyphenated
// keys are common (site-name, primary-color). A guard written as
// site-name parses as subtraction, so this visitor joins such chains
// back into a single identifier or member access whenever the combined
// name actually resolves in the constant map. Chains that do not
// resolve are left untouched, so genuine subtraction still works; when
// both readings resolve, the hyphenated name wins.
type hyphenPatcher struct {
	consts map[string]any
}

// Visit fires on every subtraction node. The walk is post order, so an
// inner chain that resolves on its own has already collapsed by the
// time its parent is visited, and the parent then extends the joined
// name one segment further.
func (p *hyphenPatcher) Visit(node *ast.Node) {
	segs, base, ok := splitDashes(*node)
	if !ok {
		return
	}

	name := strings.Join(segs, "-")

	if base == nil {
		if p.bound(name) {
			ast.Patch(node, &ast.IdentifierNode{Value: name})
		}

		return
	}

	path, ok := accessPath(base)
	if !ok || !p.bound(append(path, name)...) {
		return
	}

	ast.Patch(node, &ast.MemberNode{
		Node:     base,
		Property: &ast.StringNode{Value: name},
	})
}

// splitDashes decomposes a subtraction spine into hyphen segments and
// the expression the first segment hangs off of, if any. It reports
// false when any operand breaks the shape of a dashed name.
//
// The guard theme.primary-color-dark arrives from the parser as
// ((theme.primary - color) - dark); its segments are primary, color,
// dark, and its base is the identifier theme. For bare names like
// site-name-suffix the base is nil.
func splitDashes(node ast.Node) (segs []string, base ast.Node, ok bool) {
	bin, ok := node.(*ast.BinaryNode)
	if !ok || bin.Operator != "-" {
		return nil, nil, false
	}

	right, ok := bin.Right.(*ast.IdentifierNode)
	if !ok {
		return nil, nil, false
	}

	switch left := bin.Left.(type) {
	case *ast.IdentifierNode:
		return []string{left.Value, right.Value}, nil, true

	case *ast.MemberNode:
		prop, ok := left.Property.(*ast.StringNode)
		if !ok {
			return nil, nil, false
		}

		return []string{prop.Value, right.Value}, left.Node, true

	case *ast.BinaryNode:
		if segs, base, ok = splitDashes(left); !ok {
			return nil, nil, false
		}

		return append(segs, right.Value), base, true

	default:
		return nil, nil, false
	}
}

// accessPath flattens ident.a.b access into its key path, outermost
// identifier first.
func accessPath(node ast.Node) ([]string, bool) {
	var path []string

	for {
		switch n := node.(type) {
		case *ast.IdentifierNode:
			path = append(path, n.Value)
			slices.Reverse(path)

			return path, true

		case *ast.MemberNode:
			prop, ok := n.Property.(*ast.StringNode)
			if !ok {
				return nil, false
			}

			path = append(path, prop.Value)
			node = n.Node

		default:
			return nil, false
		}
	}
}

// bound reports whether the constant map binds the given key path,
// descending through nested maps.
func (p *hyphenPatcher) bound(path ...string) bool {
	cur := any(p.consts)

	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}

		if cur, ok = m[key]; !ok {
			return false
		}
	}

	return true
}
