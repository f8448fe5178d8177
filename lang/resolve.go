package lang

import "strings"

// resolver reconciles markup structure across directive branches.
// Directives are processed innermost-first; each one either leaves its
// subtree untouched (all branches balanced), or is rewritten so that
// every residual piece is balanced: unified close claims are emitted
// ahead of it and unified open elements are hoisted out behind it.
// Content following a hoisted element re-nests inside it, and content
// following a claimed close spills out to the enclosing level.
type resolver struct {
	src  string
	opts options
}

func resolve(src string, nodes []Node, opts options) ([]Node, error) {
	r := &resolver{src: src, opts: opts}

	kept, _, err := r.list(nodes, nil)
	if err != nil {
		return nil, err
	}

	if opts.validate {
		if err := r.verify(kept); err != nil {
			return nil, err
		}
	}

	return kept, nil
}

// branchDelta is the structured effect of one branch on the markup
// stack: the enclosing closes it emits with the segments between
// them, and the chain of elements it leaves open, outermost first.
type branchDelta struct {
	branch *Branch
	segs   [][]Node
	closes []*StrayClose
	chain  []*Element
}

func (bd branchDelta) zero() bool {
	return len(bd.closes) == 0 && len(bd.chain) == 0 &&
		!bd.branch.Completed && !bd.branch.SelfClose
}

func (bd branchDelta) summary() Delta {
	d := Delta{Header: bd.branch.Completed}

	for _, sc := range bd.closes {
		d.Closes = append(d.Closes, sc.Tag)
	}

	for _, e := range bd.chain {
		d.Opens = append(d.Opens, e.Tag)
	}

	return d
}

// extract computes a branch's delta. The builder guarantees the shape
// it relies on: unclaimed closes sit at the branch's top level, and an
// element left open swallows everything after it, so dangling opens
// form a chain of trailing children.
func extract(br *Branch) branchDelta {
	bd := branchDelta{branch: br}

	var seg []Node

	for _, n := range br.Children {
		if sc, ok := n.(*StrayClose); ok {
			bd.segs = append(bd.segs, seg)
			bd.closes = append(bd.closes, sc)
			seg = nil

			continue
		}

		seg = append(seg, n)
	}

	if n := len(seg); n > 0 {
		if e, ok := seg[n-1].(*Element); ok && dangling(e) {
			seg = seg[:n-1]
			bd.chain = chainOf(e)
		}
	}

	bd.segs = append(bd.segs, seg)

	return bd
}

func dangling(e *Element) bool {
	return e.CloseSpan == nil && !e.Void && !e.SelfClosing
}

// chainOf returns e and the dangling elements nested along its last
// children, outermost first.
func chainOf(e *Element) []*Element {
	var chain []*Element

	for cur := e; ; {
		chain = append(chain, cur)

		k := len(cur.Children)
		if k == 0 {
			return chain
		}

		inner, ok := cur.Children[k-1].(*Element)
		if !ok || !dangling(inner) {
			return chain
		}

		cur = inner
	}
}

// list resolves one container's node sequence. owner is the element
// whose children these are, nil at the root and inside a branch: a
// branch is a barrier, so a close inside it never claims an element
// outside it directly.
//
// When a close claims owner itself, the unprocessed remainder is
// returned as spill for the enclosing container to continue with.
func (r *resolver) list(nodes []Node, owner *Element) (kept, spill []Node, err error) {
	out := make([]Node, 0, len(nodes))

	var adopted []*Element

	add := func(n Node) {
		if len(adopted) > 0 {
			e := adopted[len(adopted)-1]
			e.Children = append(e.Children, n)

			return
		}

		out = append(out, n)
	}

	queue := nodes

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		switch n := n.(type) {
		case *Directive:
			if !structural(n) {
				add(n)

				continue
			}

			rep, changed, err := r.directive(n)
			if err != nil {
				return nil, nil, err
			}

			if !changed {
				add(n)

				continue
			}

			queue = append(append(make([]Node, 0, len(rep)+len(queue)), rep...), queue...)
		case *Element:
			inner, err := r.element(n)
			if err != nil {
				return nil, nil, err
			}

			add(n)

			if dangling(n) {
				adopted = append(adopted, chainOf(n)...)
			}

			if len(inner) > 0 {
				queue = append(append(make([]Node, 0, len(inner)+len(queue)), inner...), queue...)
			}
		case *StrayClose:
			if k := len(adopted); k > 0 {
				if e := adopted[k-1]; strings.EqualFold(e.Tag, n.Tag) {
					span := n.Span
					e.CloseSpan = &span
					adopted = adopted[:k-1]

					continue
				}

				add(n)

				continue
			}

			if owner != nil && owner.CloseSpan == nil &&
				strings.EqualFold(owner.Tag, n.Tag) {
				span := n.Span
				owner.CloseSpan = &span

				return out, queue, nil
			}

			add(n)
		case *Text, *Comment, *Variable, *RawBlock, *AssetRegion:
			add(n)
		default:
			add(n)
		}
	}

	return out, nil, nil
}

// element resolves an element's header directives and children. The
// returned nodes are content displaced out of the element by a claimed
// close; the caller continues processing them at its own level.
func (r *resolver) element(e *Element) ([]Node, error) {
	if err := r.header(e); err != nil {
		return nil, err
	}

	kept, spill, err := r.list(e.Children, e)
	if err != nil {
		return nil, err
	}

	e.Children = kept

	return spill, nil
}

// header reconciles directives that open inside an element header:
// every branch must agree on whether the open tag was finished, and
// content a branch produced after finishing it moves into the element
// body wrapped in the same guards.
func (r *resolver) header(e *Element) error {
	for _, part := range e.Header {
		d, ok := part.(*Directive)
		if !ok || !structural(d) {
			continue
		}

		if body := moveBody(d); body != nil {
			e.Children = append([]Node{body}, e.Children...)
		}

		if err := r.headerDirective(d); err != nil {
			return err
		}

		if ref := d.Branches[0]; ref.Completed && ref.SelfClose {
			e.SelfClosing = true
		}
	}

	return nil
}

func structural(d *Directive) bool {
	return d.Kind == DirConditional || d.Kind == DirLoop
}

// moveBody collects the content each branch produced after finishing
// the open tag into a fresh directive destined for the element body,
// recursing so nested guards stay nested. Returns nil when every
// branch's share is empty.
func moveBody(d *Directive) *Directive {
	any := false
	branches := make([]*Branch, len(d.Branches))

	for j, br := range d.Branches {
		var kids []Node

		for _, part := range br.Parts {
			nd, ok := part.(*Directive)
			if !ok || !structural(nd) {
				continue
			}

			if body := moveBody(nd); body != nil {
				kids = append(kids, body)
			}
		}

		kids = append(kids, br.Children...)
		br.Children = nil

		if len(kids) > 0 {
			any = true
		}

		branches[j] = &Branch{
			Keyword:  br.Keyword,
			Arg:      br.Arg,
			Children: kids,
			Span:     br.Span,
		}
	}

	if !any {
		return nil
	}

	return &Directive{Name: d.Name, Kind: d.Kind, Branches: branches, Span: d.Span}
}

// headerDirective checks one header directive and any directives
// nested in its branch parts.
func (r *resolver) headerDirective(d *Directive) error {
	ref := d.Branches[0]

	for _, br := range d.Branches[1:] {
		if br.Completed == ref.Completed && br.SelfClose == ref.SelfClose {
			continue
		}

		if !r.opts.validate {
			return nil
		}

		return &BalanceError{
			Reason:   "branches disagree on finishing the open tag",
			Name:     d.Name,
			First:    ref.Keyword,
			Branch:   br.Keyword,
			Expected: Delta{Header: ref.Completed},
			Found:    Delta{Header: br.Completed},
			Span:     br.Span,
			Source:   r.src,
		}
	}

	if ref.Completed {
		switch {
		case d.Kind == DirLoop:
			// A loop body runs any number of times; it cannot be the
			// one to finish the open tag.
			if !r.opts.validate {
				return nil
			}

			return &BalanceError{
				Reason: "loop branches must be balanced",
				Name:   d.Name,
				Branch: ref.Keyword,
				Found:  Delta{Header: true},
				Span:   ref.Span,
				Source: r.src,
			}
		case d.Branches[len(d.Branches)-1].Keyword != kwElse:
			// Without an else the fall-through leaves the tag open.
			if !r.opts.validate {
				return nil
			}

			return &BalanceError{
				Reason:   "unbalanced branches in " + directiveToken(d.Name) + " without " + directiveToken(kwElse),
				Name:     d.Name,
				First:    kwElse,
				Branch:   ref.Keyword,
				Expected: Delta{},
				Found:    Delta{Header: true},
				Span:     ref.Span,
				Source:   r.src,
			}
		}
	}

	for _, br := range d.Branches {
		for _, part := range br.Parts {
			nd, ok := part.(*Directive)
			if !ok || !structural(nd) {
				continue
			}

			if err := r.headerDirective(nd); err != nil {
				return err
			}
		}
	}

	return nil
}

// directive resolves a structural directive's interior, measures each
// branch, and rewrites the subtree when the branches agree on a
// nonzero delta. changed reports whether rep replaces the directive;
// otherwise the caller keeps the original node.
func (r *resolver) directive(d *Directive) (rep []Node, changed bool, err error) {
	for _, br := range d.Branches {
		kept, _, err := r.list(br.Children, nil)
		if err != nil {
			return nil, false, err
		}

		br.Children = kept
	}

	deltas := make([]branchDelta, len(d.Branches))
	for j, br := range d.Branches {
		deltas[j] = extract(br)
	}

	if d.Kind == DirLoop {
		for _, bd := range deltas {
			if bd.zero() {
				continue
			}

			if !r.opts.validate {
				return nil, false, nil
			}

			return nil, false, &BalanceError{
				Reason: "loop branches must be balanced",
				Name:   d.Name,
				Branch: bd.branch.Keyword,
				Found:  bd.summary(),
				Span:   bd.branch.Span,
				Source: r.src,
			}
		}

		return nil, false, nil
	}

	ref := deltas[0]

	for _, bd := range deltas[1:] {
		if agree(ref, bd) {
			continue
		}

		if !r.opts.validate {
			return nil, false, nil
		}

		return nil, false, &BalanceError{
			Reason:   "unbalanced branches in " + directiveToken(d.Name),
			Name:     d.Name,
			First:    ref.branch.Keyword,
			Branch:   bd.branch.Keyword,
			Expected: ref.summary(),
			Found:    bd.summary(),
			Span:     bd.branch.Span,
			Source:   r.src,
		}
	}

	if ref.zero() {
		return nil, false, nil
	}

	// All branches agree on a nonzero delta. Without an else branch
	// the untaken path is balanced, which contradicts them.
	if d.Branches[len(d.Branches)-1].Keyword != kwElse {
		if !r.opts.validate {
			return nil, false, nil
		}

		return nil, false, &BalanceError{
			Reason:   "unbalanced branches in " + directiveToken(d.Name) + " without " + directiveToken(kwElse),
			Name:     d.Name,
			First:    kwElse,
			Branch:   ref.branch.Keyword,
			Expected: Delta{},
			Found:    ref.summary(),
			Span:     ref.branch.Span,
			Source:   r.src,
		}
	}

	return r.rewrite(d, deltas), true, nil
}

// agree reports whether two branch deltas unify: same closes, same
// open chain, same header completion. Tag names must match; headers
// and content may differ, they stay branch-tagged.
func agree(a, b branchDelta) bool {
	if len(a.closes) != len(b.closes) || len(a.chain) != len(b.chain) {
		return false
	}

	if a.branch.Completed != b.branch.Completed || a.branch.SelfClose != b.branch.SelfClose {
		return false
	}

	for i := range a.closes {
		if !strings.EqualFold(a.closes[i].Tag, b.closes[i].Tag) {
			return false
		}
	}

	for i := range a.chain {
		if !strings.EqualFold(a.chain[i].Tag, b.chain[i].Tag) {
			return false
		}
	}

	return true
}

// rewrite splits the directive at each agreed close boundary and
// hoists the agreed open chain out as unified elements, so that each
// emitted piece is balanced on its own. Guards are duplicated across
// the split pieces; they are expressions, free of side effects.
func (r *resolver) rewrite(d *Directive, deltas []branchDelta) []Node {
	ref := deltas[0]
	rep := make([]Node, 0, 2*len(ref.closes)+2)

	if res := r.residual(d, deltas, func(bd branchDelta) []Node { return bd.segs[0] }); res != nil {
		rep = append(rep, res)
	}

	for i, sc := range ref.closes {
		rep = append(rep, sc)

		seg := i + 1
		if res := r.residual(d, deltas, func(bd branchDelta) []Node { return bd.segs[seg] }); res != nil {
			rep = append(rep, res)
		}
	}

	if len(ref.chain) > 0 {
		rep = append(rep, r.unify(d, deltas, 0))
	}

	return rep
}

// residual builds a guard-sharing directive holding per-branch
// content, or nil when every branch's share is empty.
func (r *resolver) residual(d *Directive, deltas []branchDelta, content func(branchDelta) []Node) *Directive {
	any := false
	branches := make([]*Branch, len(deltas))

	for j, bd := range deltas {
		kids := content(bd)
		if len(kids) > 0 {
			any = true
		}

		branches[j] = &Branch{
			Keyword:  bd.branch.Keyword,
			Arg:      bd.branch.Arg,
			Children: kids,
			Span:     bd.branch.Span,
		}
	}

	if !any {
		return nil
	}

	return &Directive{Name: d.Name, Kind: d.Kind, Branches: branches, Span: d.Span}
}

// unify materializes one level of the agreed open chain as a single
// element. Its open span is synthesized from the whole directive;
// differing headers stay wrapped in the directive's guards.
func (r *resolver) unify(d *Directive, deltas []branchDelta, level int) *Element {
	ref := deltas[0].chain[level]
	e := &Element{Tag: ref.Tag, Unified: true, OpenSpan: d.Span}

	if headersEqual(deltas, level) {
		e.Header = ref.Header
	} else {
		branches := make([]*Branch, len(deltas))

		for j, bd := range deltas {
			branches[j] = &Branch{
				Keyword: bd.branch.Keyword,
				Arg:     bd.branch.Arg,
				Parts:   bd.chain[level].Header,
				Span:    bd.branch.Span,
			}
		}

		e.Header = []HeaderPart{
			&Directive{Name: d.Name, Kind: d.Kind, Branches: branches, Span: d.Span},
		}
	}

	inner := level+1 < len(deltas[0].chain)

	if res := r.residual(d, deltas, func(bd branchDelta) []Node {
		kids := bd.chain[level].Children
		if inner {
			kids = kids[:len(kids)-1]
		}

		return kids
	}); res != nil {
		e.Children = append(e.Children, res)
	}

	if inner {
		e.Children = append(e.Children, r.unify(d, deltas, level+1))
	}

	return e
}

// headersEqual reports whether every branch contributes an identical
// plain-attribute header at the given chain level. Any difference, or
// any conditional part, keeps the headers branch-tagged.
func headersEqual(deltas []branchDelta, level int) bool {
	ref := deltas[0].chain[level].Header

	for _, bd := range deltas[1:] {
		parts := bd.chain[level].Header
		if len(parts) != len(ref) {
			return false
		}

		for i := range ref {
			a, aok := ref[i].(*Attr)
			b, bok := parts[i].(*Attr)

			if !aok || !bok || !strings.EqualFold(a.Name, b.Name) || a.Value != b.Value {
				return false
			}
		}
	}

	return true
}

// verify rejects whatever the resolver could not reconcile: a close
// with no open, an element never closed. First fault in document
// order wins.
func (r *resolver) verify(nodes []Node) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *StrayClose:
			return &BalanceError{
				Reason: "stray close tag </" + n.Tag + ">",
				Tag:    n.Tag,
				Span:   n.Span,
				Source: r.src,
			}
		case *Element:
			if dangling(n) {
				return &BalanceError{
					Reason: "unclosed element <" + n.Tag + ">",
					Tag:    n.Tag,
					Span:   n.OpenSpan,
					Source: r.src,
				}
			}

			if err := r.verify(n.Children); err != nil {
				return err
			}
		case *Directive:
			for _, br := range n.Branches {
				if err := r.verify(br.Children); err != nil {
					return err
				}
			}
		case *AssetRegion:
			if err := r.verify([]Node{n.Elem}); err != nil {
				return err
			}
		case *Text, *Comment, *Variable, *RawBlock:
		}
	}

	return nil
}
