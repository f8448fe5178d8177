package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testBuild returns a Build with the defaults kong would apply, rooted in a
// fresh temporary directory. The caller owns the returned source, output,
// and cache paths.
func testBuild(t *testing.T) (b *Build, src, out string) {
	t.Helper()

	tmpdir, err := os.MkdirTemp("", "tplc-build-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpdir) })

	src = filepath.Join(tmpdir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	out = filepath.Join(tmpdir, "dist")

	b = &Build{
		Paths:  []string{src},
		Output: out,
		Cache:  filepath.Join(tmpdir, "cache"),
		Ext:    []string{".tpl", ".tmpl"},
	}

	return b, src, out
}

// TestBuildRun tests compiling a source tree into mirrored output.
func TestBuildRun(t *testing.T) {
	build, src, out := testBuild(t)

	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"index.tpl":                    "{{v}}",
		filepath.Join("sub", "a.tmpl"): "{%if dev%}<b>x</b>{%endif%}",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	want := map[string]string{
		"index.tpl":                    "{{ v }}",
		filepath.Join("sub", "a.tmpl"): "{% if dev %}<b>x</b>{% endif %}",
	}
	for name, content := range want {
		got, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("reading output %s: %v", name, err)
		}

		if string(got) != content {
			t.Errorf("output %s = %q, want %q", name, string(got), content)
		}
	}
}

// TestBuildRunFreshnessSkip tests that an unchanged input is not recompiled
// and that --all overrides the freshness index.
func TestBuildRunFreshnessSkip(t *testing.T) {
	build, src, out := testBuild(t)

	if err := os.WriteFile(filepath.Join(src, "page.tpl"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	// Tamper with the artifact. A skipped input must leave it alone; a
	// recompile restores it.
	outPath := filepath.Join(out, "page.tpl")
	if err := os.WriteFile(outPath, []byte("TAMPERED"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "TAMPERED" {
		t.Errorf("unchanged input was recompiled: output = %q", string(got))
	}

	build.All = true

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	got, err = os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "hello" {
		t.Errorf("--all did not recompile: output = %q, want %q", string(got), "hello")
	}
}

// TestBuildRunModifiedSourceRecompiles tests that changing an input's content
// invalidates its freshness stamp.
func TestBuildRunModifiedSourceRecompiles(t *testing.T) {
	build, src, out := testBuild(t)

	srcPath := filepath.Join(src, "page.tpl")
	if err := os.WriteFile(srcPath, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	if err := os.WriteFile(srcPath, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(out, "page.tpl"))
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "two" {
		t.Errorf("modified input was not recompiled: output = %q, want %q", string(got), "two")
	}
}

// TestBuildRunCollectsFailures tests that one broken template fails the build
// without blocking output for the rest.
func TestBuildRunCollectsFailures(t *testing.T) {
	build, src, out := testBuild(t)

	files := map[string]string{
		"good.tpl": "hello",
		"bad.tpl":  "<p>x", // unclosed element
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	err := build.Run(context.Background())
	if err == nil {
		t.Fatal("Build.Run() expected error for broken template, got nil")
	}

	if !strings.Contains(err.Error(), "build failed") {
		t.Errorf("got error %q, want build failure", err)
	}

	got, err := os.ReadFile(filepath.Join(out, "good.tpl"))
	if err != nil {
		t.Fatalf("good template output missing: %v", err)
	}

	if string(got) != "hello" {
		t.Errorf("good output = %q, want %q", string(got), "hello")
	}

	if _, err := os.Stat(filepath.Join(out, "bad.tpl")); err == nil {
		t.Error("broken template should produce no output")
	}
}

// TestBuildRunNoInputs tests that an empty source tree is an error.
func TestBuildRunNoInputs(t *testing.T) {
	build, _, _ := testBuild(t)

	err := build.Run(context.Background())
	if err == nil {
		t.Fatal("Build.Run() expected error for empty source tree, got nil")
	}

	if !strings.Contains(err.Error(), "no template inputs") {
		t.Errorf("got error %q, want missing inputs", err)
	}
}

// TestBuildRunStdin tests compiling stdin to stdout.
func TestBuildRunStdin(t *testing.T) {
	// Swap stdin for a pipe carrying the template source.
	oldStdin := os.Stdin
	defer func() { os.Stdin = oldStdin }()

	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdin = inR

	go func() {
		defer inW.Close()
		io.WriteString(inW, "{{v}}")
	}()

	// Capture stdout
	oldStdout := os.Stdout
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = outW

	build := &Build{
		Paths:  []string{"-"},
		Output: "dist",
		Ext:    []string{".tpl"},
	}

	runErr := build.Run(context.Background())

	// Restore stdout
	outW.Close()
	os.Stdout = oldStdout

	if runErr != nil {
		t.Fatalf("Build.Run() unexpected error = %v", runErr)
	}

	var buf bytes.Buffer
	io.Copy(&buf, outR)

	if buf.String() != "{{ v }}" {
		t.Errorf("stdout = %q, want %q", buf.String(), "{{ v }}")
	}
}

// TestBuildRunSymbols tests that requesting debug symbols writes a symbol
// table next to the compiled artifact.
func TestBuildRunSymbols(t *testing.T) {
	build, src, out := testBuild(t)
	build.Option = []string{"debug-symbols"}

	if err := os.WriteFile(filepath.Join(src, "page.tpl"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	symPath := filepath.Join(out, "page.tpl.sym.yaml")

	data, err := os.ReadFile(symPath)
	if err != nil {
		t.Fatalf("symbol table missing: %v", err)
	}

	if len(data) == 0 {
		t.Error("symbol table is empty")
	}
}

// TestBuildRunConstantsFold tests that --const values decide guards during
// compilation.
func TestBuildRunConstantsFold(t *testing.T) {
	build, src, out := testBuild(t)
	build.Const = map[string]string{"dev": "true"}

	srcText := "{% if dev %}a{% else %}b{% endif %}"
	if err := os.WriteFile(filepath.Join(src, "page.tpl"), []byte(srcText), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := build.Run(context.Background()); err != nil {
		t.Fatalf("Build.Run() unexpected error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(out, "page.tpl"))
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "a" {
		t.Errorf("output = %q, want %q (guard should fold)", string(got), "a")
	}
}

// TestBuildRunUnknownOption tests that a misspelled compiler option aborts
// before any compilation.
func TestBuildRunUnknownOption(t *testing.T) {
	build, src, _ := testBuild(t)
	build.Option = []string{"debug-symbls"}

	if err := os.WriteFile(filepath.Join(src, "page.tpl"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := build.Run(context.Background())
	if err == nil {
		t.Fatal("Build.Run() expected error for unknown option, got nil")
	}

	if !strings.Contains(err.Error(), "debug-symbols") {
		t.Errorf("got error %q, want suggestion for %q", err, "debug-symbols")
	}
}
