package lang_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/ardnew/tplc/lang"
)

// TestCompile_Canonical verifies end-to-end compilation of well-formed
// sources under the default configuration.
func TestCompile_Canonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "plain_text",
			src:  "hello",
			want: "hello",
		},
		{
			name: "whitespace_collapsed",
			src:  "a\n   b",
			want: "a b",
		},
		{
			name: "indented_markup",
			src:  "<ul>\n  <li>one</li>\n</ul>",
			want: "<ul> <li>one</li> </ul>",
		},
		{
			name: "preformatted_kept",
			src:  "<pre>a   b</pre>",
			want: "<pre>a   b</pre>",
		},
		{
			name: "substitution_normalized",
			src:  "{{v}}",
			want: "{{ v }}",
		},
		{
			name: "directive_normalized",
			src:  "{%if dev%}<b>x</b>{%endif%}",
			want: "{% if dev %}<b>x</b>{% endif %}",
		},
		{
			name: "markup_comment_verbatim",
			src:  "<!-- a   b -->",
			want: "<!-- a   b -->",
		},
		{
			name: "void_element",
			src:  `<img src="a.png">`,
			want: `<img src="a.png">`,
		},
		{
			name: "adjacent_scripts_merged",
			src:  "<script>a()</script><script>b()</script>",
			want: "<script>a()\nb()</script>",
		},
		{
			name: "branch_opens_unified",
			src:  `{% if c %}<p class="a">{% else %}<p class="b">{% endif %}x</p>`,
			want: `<p {% if c %}class="a"{% else %}class="b"{% endif %}>x</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := lang.NewCompiler().Compile(context.Background(), "page.tpl", tt.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}

			if res.Output != tt.want {
				t.Errorf("Compile() = %q, want %q", res.Output, tt.want)
			}
		})
	}
}

// TestCompile_Idempotent verifies that compiling canonical output
// again reproduces it byte for byte.
func TestCompile_Idempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{
			name: "mixed_document",
			src:  "<div id=\"top\">\n  {% if dev %}<b>{{ user }}</b>{% else %}guest{% endif %}\n</div>",
		},
		{
			name: "unified_header",
			src:  `{% if c %}<p class="a">{% else %}<p class="b">{% endif %}x</p>`,
		},
		{
			name: "merged_scripts",
			src:  "<script>a()</script>\n<script>b()</script>",
		},
		{
			name: "loop_with_empty",
			src:  "<ul>{% for x in xs %}<li>{{ x }}</li>{% empty %}<li>none</li>{% endfor %}</ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := lang.NewCompiler()

			first, err := c.Compile(context.Background(), "page.tpl", tt.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}

			second, err := c.Compile(context.Background(), "page.tpl", first.Output)
			if err != nil {
				t.Fatalf("Compile(canonical) error = %v", err)
			}

			if second.Output != first.Output {
				t.Errorf("recompile = %q, want %q", second.Output, first.Output)
			}
		})
	}
}

// TestCompile_RawRegions verifies that raw regions pass through
// uninterpreted and that the markers themselves are consumed.
func TestCompile_RawRegions(t *testing.T) {
	t.Parallel()

	res, err := lang.NewCompiler().Compile(context.Background(), "page.tpl",
		"a{% !raw %}{{ x }}  <p>{% !endraw %}b")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if want := "a{{ x }}  <p>b"; res.Output != want {
		t.Errorf("Compile() = %q, want %q", res.Output, want)
	}
}

// TestCompile_OptionTagsScopedToFile verifies that an in-source option
// tag configures only the file that carries it.
func TestCompile_OptionTagsScopedToFile(t *testing.T) {
	t.Parallel()

	c := lang.NewCompiler()

	tagged, err := c.Compile(context.Background(), "a.tpl",
		"{% ! no-whitespace-compression %}a   b")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if want := "a   b"; tagged.Output != want {
		t.Errorf("tagged file = %q, want %q", tagged.Output, want)
	}

	plain, err := c.Compile(context.Background(), "b.tpl", "a   b")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if want := "a b"; plain.Output != want {
		t.Errorf("later file = %q, want %q", plain.Output, want)
	}
}

// TestCompile_UnknownOptionTag verifies that a misspelled option tag
// fails the compile and locates the fault in the source.
func TestCompile_UnknownOptionTag(t *testing.T) {
	t.Parallel()

	src := "{% ! symbls %}"

	res, err := lang.NewCompiler().Compile(context.Background(), "page.tpl", src)
	if err == nil {
		t.Fatalf("Compile() = %q, want error", res.Output)
	}

	if !errors.Is(err, lang.ErrConfig) {
		t.Errorf("errors.Is(err, ErrConfig) = false for %v", err)
	}

	var cfg *lang.ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("error %T does not unwrap to *ConfigError", err)
	}

	if cfg.Option != "symbls" {
		t.Errorf("Option = %q, want symbls", cfg.Option)
	}

	if cfg.Suggest != "debug-symbols" {
		t.Errorf("Suggest = %q, want debug-symbols", cfg.Suggest)
	}

	if cfg.Span.IsZero() {
		t.Error("Span is zero, want the option tag location")
	}

	if cfg.Source != src {
		t.Errorf("Source = %q, want the compiled source", cfg.Source)
	}

	if !strings.Contains(err.Error(), "did you mean") {
		t.Errorf("message lacks suggestion: %v", err)
	}
}

// TestCompile_DebugSymbols verifies the output-to-source table emitted
// alongside the compiled text.
func TestCompile_DebugSymbols(t *testing.T) {
	t.Parallel()

	res, err := lang.NewCompiler(lang.WithDebugSymbols(true)).
		Compile(context.Background(), "page.tpl", "hi")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if res.Symbols == nil {
		t.Fatal("Symbols = nil, want a table")
	}

	if res.Symbols.Name != "page.tpl" {
		t.Errorf("Symbols.Name = %q, want page.tpl", res.Symbols.Name)
	}

	sym, ok := res.Symbols.Lookup(1)
	if !ok {
		t.Fatal("Lookup(1) found nothing")
	}

	if sym.Start != 0 || sym.End != 2 {
		t.Errorf("symbol range = [%d,%d), want [0,2)", sym.Start, sym.End)
	}

	if sym.Span.Start.Offset != 0 || sym.Span.End.Offset != 2 {
		t.Errorf("symbol span = %v, want offsets 0..2", sym.Span)
	}

	plain, err := lang.NewCompiler().Compile(context.Background(), "page.tpl", "hi")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if plain.Symbols != nil {
		t.Error("Symbols present without the option")
	}
}

// TestCompile_DebugSymbolsMergedAssets verifies that after two style
// regions merge, the table still reaches back to both originals.
func TestCompile_DebugSymbolsMergedAssets(t *testing.T) {
	t.Parallel()

	src := "<style>a{}</style>\n<style>b{}</style>"

	res, err := lang.NewCompiler(lang.WithDebugSymbols(true)).
		Compile(context.Background(), "page.tpl", src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if want := "<style>a{}\nb{}</style>"; res.Output != want {
		t.Fatalf("Compile() = %q, want %q", res.Output, want)
	}

	symA, ok := res.Symbols.Lookup(strings.Index(res.Output, "a{}"))
	if !ok {
		t.Fatal("no symbol covers the first payload")
	}

	symB, ok := res.Symbols.Lookup(strings.Index(res.Output, "b{}"))
	if !ok {
		t.Fatal("no symbol covers the second payload")
	}

	if want := strings.Index(src, "a{}"); symA.Span.Start.Offset != want {
		t.Errorf("first payload span starts at %d, want %d", symA.Span.Start.Offset, want)
	}

	if want := strings.Index(src, "b{}"); symB.Span.Start.Offset != want {
		t.Errorf("second payload span starts at %d, want %d", symB.Span.Start.Offset, want)
	}
}

// TestCompile_ConstantFolding verifies compile-time evaluation against
// a constant environment.
func TestCompile_ConstantFolding(t *testing.T) {
	t.Parallel()

	consts := map[string]any{
		"dev":  true,
		"off":  false,
		"name": "world",
		"n":    3.0,
		"pi":   2.5,
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "true_branch_wins",
			src:  "{% if dev %}a{% else %}b{% endif %}",
			want: "a",
		},
		{
			name: "false_guard_drops_body",
			src:  "{% if off %}a{% endif %}",
			want: "",
		},
		{
			name: "substitution",
			src:  "{{ name }}",
			want: "world",
		},
		{
			name: "integral_float",
			src:  "{{ n }}",
			want: "3",
		},
		{
			name: "fractional_float",
			src:  "{{ pi }}",
			want: "2.5",
		},
		{
			name: "arithmetic",
			src:  "{{ n + 1 }}",
			want: "4",
		},
		{
			name: "header_attribute",
			src:  `<p {% if dev %}class="on"{% endif %}>{{ name }}</p>`,
			want: `<p class="on">world</p>`,
		},
		{
			name: "unknown_name_deferred",
			src:  "{{ user }}",
			want: "{{ user }}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := lang.NewCompiler(lang.WithConstants(consts)).
				Compile(context.Background(), "page.tpl", tt.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}

			if res.Output != tt.want {
				t.Errorf("Compile() = %q, want %q", res.Output, tt.want)
			}
		})
	}
}

// TestCompile_Failures verifies that malformed sources fail with the
// documented error classes.
func TestCompile_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		sentinel error
	}{
		{name: "unterminated_substitution", src: "{{ x", sentinel: lang.ErrLex},
		{name: "orphan_close_keyword", src: "{% endif %}", sentinel: lang.ErrStructure},
		{name: "unclosed_element", src: "<p>x", sentinel: lang.ErrBalance},
		{name: "stray_close_tag", src: "x</b>", sentinel: lang.ErrBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := lang.NewCompiler().Compile(context.Background(), "page.tpl", tt.src)
			if err == nil {
				t.Fatalf("Compile() = %q, want error", res.Output)
			}

			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}

			if !strings.Contains(err.Error(), "at line") {
				t.Errorf("message lacks a location: %v", err)
			}
		})
	}
}

// TestCompile_WithoutValidation verifies that markup faults downgrade
// to verbatim output when validation is off.
func TestCompile_WithoutValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "unclosed_element", src: "<p>x", want: "<p>x"},
		{name: "stray_close_tag", src: "x</b>", want: "x</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := lang.NewCompiler(lang.WithValidation(false)).
				Compile(context.Background(), "page.tpl", tt.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}

			if res.Output != tt.want {
				t.Errorf("Compile() = %q, want %q", res.Output, tt.want)
			}
		})
	}
}

// TestCompile_ContextCanceled verifies that a canceled context aborts
// the pipeline.
func TestCompile_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lang.NewCompiler().Compile(ctx, "page.tpl", "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Compile() error = %v, want context.Canceled", err)
	}
}

// TestCompileReader verifies the streaming entry point.
func TestCompileReader(t *testing.T) {
	t.Parallel()

	const src = "<p>{{ v }}</p>"

	got, err := lang.NewCompiler().CompileReader(context.Background(), "page.tpl",
		strings.NewReader(src))
	if err != nil {
		t.Fatalf("CompileReader() error = %v", err)
	}

	want, err := lang.NewCompiler().Compile(context.Background(), "page.tpl", src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if got.Output != want.Output {
		t.Errorf("CompileReader() = %q, want %q", got.Output, want.Output)
	}
}

// TestCompileReader_ReadFailure verifies that input errors surface
// with their cause intact.
func TestCompileReader_ReadFailure(t *testing.T) {
	t.Parallel()

	_, err := lang.NewCompiler().CompileReader(context.Background(), "page.tpl",
		iotest.ErrReader(io.ErrUnexpectedEOF))
	if err == nil {
		t.Fatal("CompileReader() error = nil, want read failure")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("cause not reachable through errors.Is: %v", err)
	}
}

// TestParse_Format verifies that formatting a parsed tree reproduces
// the compiled text.
func TestParse_Format(t *testing.T) {
	t.Parallel()

	const src = "x{% if dev %}<b>y</b>{% endif %}"

	tree, err := lang.NewCompiler().Parse(context.Background(), "page.tpl", src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if tree.Name != "page.tpl" {
		t.Errorf("Name = %q, want page.tpl", tree.Name)
	}

	var buf strings.Builder
	if err := tree.Format(context.Background(), &buf, lang.DefaultSyntax()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	res, err := lang.NewCompiler().Compile(context.Background(), "page.tpl", src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if got, want := buf.String(), res.Output+"\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

// TestCompile_CustomSyntax verifies compilation under alternate
// delimiters.
func TestCompile_CustomSyntax(t *testing.T) {
	t.Parallel()

	alt := lang.Syntax{
		BlockStart:    "<%",
		BlockEnd:      "%>",
		VariableStart: "[[",
		VariableEnd:   "]]",
		CommentStart:  "[#",
		CommentEnd:    "#]",
	}

	c := lang.NewCompiler(lang.WithSyntax(alt))

	res, err := c.Compile(context.Background(), "page.tpl", "<% if dev %>[[v]]<% endif %>")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if want := "<% if dev %>[[ v ]]<% endif %>"; res.Output != want {
		t.Errorf("Compile() = %q, want %q", res.Output, want)
	}

	// The default delimiters carry no meaning under alternates.
	res, err = c.Compile(context.Background(), "page.tpl", "{{ v }}")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if want := "{{ v }}"; res.Output != want {
		t.Errorf("Compile() = %q, want %q", res.Output, want)
	}
}

// TestCompile_CustomDirectives verifies declared directive behavior
// end to end.
func TestCompile_CustomDirectives(t *testing.T) {
	t.Parallel()

	c := lang.NewCompiler(lang.WithDirectives(map[string]lang.DirectiveSpec{
		"stamp": {
			Foldable: true,
			Render: func(arg string, _ map[string]any) (string, error) {
				return "v" + arg, nil
			},
		},
	}))

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "foldable_renders", src: "{% stamp 1.2 %}", want: "v1.2"},
		{name: "markup_emitter_deferred", src: "{% csrf_token %}", want: "{% csrf_token %}"},
		{name: "undeclared_deferred", src: "{% widget a %}", want: "{% widget a %}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := c.Compile(context.Background(), "page.tpl", tt.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}

			if res.Output != tt.want {
				t.Errorf("Compile() = %q, want %q", res.Output, tt.want)
			}
		})
	}
}
