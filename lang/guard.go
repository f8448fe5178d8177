package lang

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/expr-lang/expr"
	exprast "github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"
)

// guards evaluates guard and variable expressions against the
// compile-time constant map. Compiled programs are cached by content
// hash; one instance serves every file a [Compiler] processes, from
// any number of goroutines.
type guards struct {
	consts  map[string]any
	patcher *hyphenPatcher
	cache   sync.Map // xxh3 of source -> *vm.Program
}

func newGuards(consts map[string]any) *guards {
	if consts == nil {
		consts = map[string]any{}
	}

	return &guards{
		consts:  consts,
		patcher: &hyphenPatcher{consts: consts},
	}
}

// static reports whether source references only identifiers bound in
// the constant map. Static expressions can be decided at compile
// time; everything else must survive to the output.
func (g *guards) static(source string) bool {
	tree, err := parser.Parse(source)
	if err != nil {
		return false
	}

	// Join hyphenated constant names first, so site-name counts as
	// one bound identifier rather than two free ones.
	exprast.Walk(&tree.Node, g.patcher)

	c := identCollector{bound: g.consts}
	exprast.Walk(&tree.Node, &c)

	return !c.free
}

// identCollector flags any identifier the constant map does not bind.
type identCollector struct {
	bound map[string]any
	free  bool
}

func (c *identCollector) Visit(node *exprast.Node) {
	if id, ok := (*node).(*exprast.IdentifierNode); ok {
		if _, bound := c.bound[id.Value]; !bound {
			c.free = true
		}
	}
}

// truth evaluates a static guard to its branch decision.
func (g *guards) truth(source string) (bool, error) {
	v, err := g.eval(source)
	if err != nil {
		return false, err
	}

	return truthy(v), nil
}

// eval compiles and runs a static expression.
func (g *guards) eval(source string) (any, error) {
	program, err := g.program(source)
	if err != nil {
		return nil, err
	}

	result, err := vm.Run(program, g.consts)
	if err != nil {
		return nil, ErrGuardEvaluate.Wrap(err).
			With(slog.String("source", source))
	}

	return result, nil
}

func (g *guards) program(source string) (*vm.Program, error) {
	key := xxh3.HashString(source)
	if p, ok := g.cache.Load(key); ok {
		return p.(*vm.Program), nil
	}

	program, err := expr.Compile(source, expr.Env(g.consts), expr.Patch(g.patcher))
	if err != nil {
		return nil, ErrGuardCompile.Wrap(err).
			With(slog.String("source", source))
	}

	g.cache.Store(key, program)

	return program, nil
}

// truthy maps an evaluation result to a branch decision the way the
// template language does: nil, false, zero numbers, and empty strings
// or collections are false.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// literal renders a static variable result as output text. Only
// scalar results render; composites keep the variable unfolded.
func literal(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case string:
		return v, true
	default:
		return "", false
	}
}
