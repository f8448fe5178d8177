package lang

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkCompile measures full-pipeline throughput per construct.
func BenchmarkCompile(b *testing.B) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "plain_text",
			src:  "The quick brown fox jumps over the lazy dog.",
		},
		{
			name: "nested_markup",
			src:  `<div class="a"><ul><li>one</li><li>two</li></ul></div>`,
		},
		{
			name: "directives",
			src:  "{% if dev %}<b>{{ user }}</b>{% else %}guest{% endif %}",
		},
		{
			name: "unified_header",
			src:  `{% if c %}<p class="a">{% else %}<p class="b">{% endif %}x</p>`,
		},
		{
			name: "asset_merge",
			src:  "<script>a()</script><script>b()</script><style>p{}</style>",
		},
		{
			name: "whitespace_heavy",
			src:  "a\n\n\n   b\n\t\tc   d\n\n e",
		},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			c := NewCompiler()

			if _, err := c.Compile(context.Background(), "bench.tpl", tt.src); err != nil {
				b.Fatalf("compile error: %v", err)
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := c.Compile(context.Background(), "bench.tpl", tt.src); err != nil {
					b.Fatalf("compile error: %v", err)
				}
			}
		})
	}
}

// BenchmarkCompile_Size measures scaling across document sizes.
func BenchmarkCompile_Size(b *testing.B) {
	sizes := []struct {
		name  string
		count int
	}{
		{"small", 10},
		{"medium", 250},
		{"large", 2500},
	}

	for _, size := range sizes {
		var sb strings.Builder

		sb.WriteString("<!-- generated -->\n<div id=\"list\">\n")

		for i := range size.count {
			fmt.Fprintf(&sb,
				"  <li data-n=\"%d\">{%% if dev %%}{{ label }}{%% else %%}row %d{%% endif %%}</li>\n",
				i, i)
		}

		sb.WriteString("</div>\n")
		src := sb.String()

		b.Run(size.name, func(b *testing.B) {
			c := NewCompiler()

			if _, err := c.Compile(context.Background(), "bench.tpl", src); err != nil {
				b.Fatalf("compile error: %v", err)
			}

			b.SetBytes(int64(len(src)))
			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := c.Compile(context.Background(), "bench.tpl", src); err != nil {
					b.Fatalf("compile error: %v", err)
				}
			}
		})
	}
}

// BenchmarkCompile_ConstantFolding measures folding-heavy sources
// against a populated constant environment.
func BenchmarkCompile_ConstantFolding(b *testing.B) {
	c := NewCompiler(WithConstants(map[string]any{
		"dev":     true,
		"user":    "admin",
		"version": "1.4.0",
	}))

	src := `{% if dev %}<p title="{{ user }}">{{ version }}</p>{% else %}<p>release</p>{% endif %}` +
		`{{ user }} {{ version }}{% if dev %}x{% endif %}`

	if _, err := c.Compile(context.Background(), "bench.tpl", src); err != nil {
		b.Fatalf("compile error: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := c.Compile(context.Background(), "bench.tpl", src); err != nil {
			b.Fatalf("compile error: %v", err)
		}
	}
}

// BenchmarkGuardEvaluation measures repeated guard checks through the
// compiled-program cache.
func BenchmarkGuardEvaluation(b *testing.B) {
	g := newGuards(map[string]any{"a": 2, "limit": 10})

	// Warm the program cache so iterations measure evaluation only.
	if _, err := g.truth("a * 3 < limit"); err != nil {
		b.Fatalf("guard error: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := g.truth("a * 3 < limit"); err != nil {
			b.Fatalf("guard error: %v", err)
		}
	}
}

// BenchmarkCollapse measures the whitespace fast path against messy
// input.
func BenchmarkCollapse(b *testing.B) {
	tests := []struct {
		name string
		text string
	}{
		{"already_collapsed", strings.Repeat("word ", 200)},
		{"messy", strings.Repeat("word\n\t  ", 200)},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = collapse(tt.text)
			}
		})
	}
}

// BenchmarkSerialize measures rendering an already optimized tree.
func BenchmarkSerialize(b *testing.B) {
	src := `<div id="top">{% if dev %}<b>{{ user }}</b>{% else %}guest{% endif %}</div>`

	tree, err := NewCompiler().Parse(context.Background(), "bench.tpl", src)
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = serialize(tree.Nodes, DefaultSyntax(), nil)
	}
}
