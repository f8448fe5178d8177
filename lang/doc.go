// Package lang compiles hybrid markup and template-directive source
// into canonical markup. Structural work that a request-time renderer
// would otherwise repeat on every request, reconciling open and close
// tags split across directive branches, collapsing whitespace,
// merging inline assets, deciding constant guards, is settled once at
// build time.
//
// # Pipeline
//
// A [Compiler] runs a fixed sequence of passes over each file:
//
//	tokenize → build tree → resolve tag pairs → fold →
//	compress whitespace → merge assets → serialize
//
// Data flows strictly downstream; no pass revisits an earlier stage.
// The optimizer passes never fail a compile: a subtree a pass cannot
// prove safe to transform is simply left unchanged. Everything before
// them is strict, and the first error aborts the file with no output.
//
// # Grammar
//
// Markup is ordinary tag soup with configurable void and raw-text
// element names. Directives and substitutions use the delimiter pairs
// of [Syntax] (by default {% %}, {{ }}, and {# #}):
//
//	Conditional  → {% if e %} … ({% elif e %} …)* ({% else %} …)? {% endif %}
//	Loop         → {% for x in e %} … ({% empty %} …)? {% endfor %}
//	Raw escape   → {% !raw %} … {% !endraw %}
//	Comment      → {# single line #} | {% comment %} … {% endcomment %}
//	Option tag   → {% ! option-string %}
//	Variable     → {{ e }}
//
// where e is an expr-lang expression. Unregistered directive names
// compile as opaque leaves: they pass through to the output untouched
// and are assumed to open or close nothing.
//
// # Tag-pair resolution
//
// The builder tolerates markup whose open and close tags live in
// different directive branches; the resolver reconciles them. Each
// branch is summarized as a structural delta (tags it closes, tags it
// leaves open, whether it finishes a pending open tag), and branches
// whose deltas agree are unified. The idiomatic split tag
//
//	<a {% if active %}class="on"{% else %}class="off"{% endif %}>…</a>
//
// becomes a single element whose attributes carry their branch
// guards, and
//
//	{% if wide %}<table><tr>{% else %}<ul>{% endif %}
//
// hoists the agreeing opens out of the conditional. Branches whose
// deltas disagree are a [*BalanceError]; with validation disabled the
// fragments serialize verbatim instead.
//
// # Folding
//
// Guard and variable expressions whose identifiers all resolve in
// the compile-time constant map (see [WithConstants]) are evaluated
// during compilation: decided conditionals splice in their winning
// branch, and constant variables become literal text. Hyphenated
// constant names, which expr-lang parses as subtraction, are
// recognized and joined before the decision. Loops never fold; their
// trip count is a request-time question.
//
// # Example
//
//	c := lang.NewCompiler(
//		lang.WithConstants(map[string]any{"debug": false}),
//	)
//
//	res, err := c.Compile(ctx, "index", src)
//	if err != nil {
//		var balance *lang.BalanceError
//		if errors.As(err, &balance) {
//			// span, branch deltas, caret snippet …
//		}
//		return err
//	}
//
//	fmt.Print(res.Output)
//
// Compiling a compiled file is the identity: output is canonical, so
// the compiler can run over its own artifacts safely.
//
// # Concurrency
//
// A Compiler is immutable after construction and safe for concurrent
// use. Each file compiles synchronously on the calling goroutine;
// batch drivers get parallelism by compiling files on separate
// goroutines, and cancellation is honored between pipeline stages.
package lang
