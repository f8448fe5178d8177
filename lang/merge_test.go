package lang

import "testing"

// assetRender runs the passes in compile order so merge behavior is
// observed exactly as a caller would.
func assetRender(t *testing.T, src string, consts map[string]any, opts ...Option) string {
	t.Helper()

	o := defaultOptions().apply(opts...)
	if consts != nil {
		o = o.apply(WithConstants(consts))
	}

	toks, err := newLexer(src, o).run()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	res, err := newBuilder(src, toks, o).run()
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	nodes, err := resolve(src, res.nodes, o)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	nodes = tagAssets(nodes)
	nodes = fold(nodes, newGuards(o.constants), o)

	if o.compress {
		compress(nodes, makeTagTable(o.voidTags, o.rawTags))
	}

	nodes = mergeAssets(nodes, o)

	return serialize(nodes, o.syntax, nil)
}

func TestMergeAssets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "adjacent scripts",
			input: "<script>var a=1;</script>\n<script>var b=2;</script>",
			want:  "<script>var a=1;\nvar b=2;</script>",
		},
		{
			name:  "adjacent styles",
			input: "<style>.a{color:red}</style><style>.b{margin:0}</style>",
			want:  "<style>.a{color:red}\n.b{margin:0}</style>",
		},
		{
			name:  "three scripts",
			input: "<script>a</script><script>b</script><script>c</script>",
			want:  "<script>a\nb\nc</script>",
		},
		{
			name:  "comment breaks adjacency",
			input: "<script>a</script><!-- x --><script>b</script>",
			want:  "<script>a</script><!-- x --><script>b</script>",
		},
		{
			name:  "element breaks adjacency",
			input: "<script>a</script><p>t</p><script>b</script>",
			want:  "<script>a</script><p>t</p><script>b</script>",
		},
		{
			name:  "external script not touched",
			input: `<script src="x.js"></script><script>a</script>`,
			want:  `<script src="x.js"></script><script>a</script>`,
		},
		{
			name:  "classic type attribute merges",
			input: `<script type="text/javascript">a</script><script>b</script>`,
			want:  `<script type="text/javascript">a` + "\nb</script>",
		},
		{
			name:  "module script stays separate",
			input: `<script type="module">m</script><script>a</script>`,
			want:  `<script type="module">m</script><script>a</script>`,
		},
		{
			name:  "style with media stays separate",
			input: `<style media="print">p{}</style><style>q{}</style>`,
			want:  `<style media="print">p{}</style><style>q{}</style>`,
		},
		{
			name:  "kinds never mix",
			input: "<script>a</script><style>s{}</style><script>b</script>",
			want:  "<script>a</script><style>s{}</style><script>b</script>",
		},
		{
			name:  "directive inside script survives merge",
			input: "<script>{% if c %}x{% endif %}</script><script>y</script>",
			want:  "<script>{% if c %}x{% endif %}\ny</script>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assetRender(t, tt.input, nil)
			if got != tt.want {
				t.Errorf("output\n got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestMergeAssets_Disabled(t *testing.T) {
	input := "<script>a</script>\n<script>b</script>"

	got := assetRender(t, input, nil, WithScriptMerging(false))

	// The blank between the regions survives, collapsed by the
	// whitespace pass like any other text.
	want := "<script>a</script> <script>b</script>"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	got = assetRender(t, "<style>.a{}</style><style>.b{}</style>", nil, WithStyleMerging(false))

	want = "<style>.a{}</style><style>.b{}</style>"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestMergeAssets_UnclosedNotMergeable(t *testing.T) {
	got := assetRender(t, "<script>a</script><script>b", nil, WithValidation(false))

	want := "<script>a</script><script>b"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestMergeAssets_FoldInsideRegion(t *testing.T) {
	got := assetRender(t, "<script>{% if on %}x(){% endif %}</script>", map[string]any{"on": true})

	want := "<script>x()</script>"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestMergeAssets_ScriptContentNeverCompressed(t *testing.T) {
	got := assetRender(t, "<script>var  a;\n\nvar  b;</script>", nil)

	want := "<script>var  a;\n\nvar  b;</script>"
	if got != want {
		t.Errorf("script interior was altered: %q", got)
	}
}
