package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestGatherInputsEmpty tests that no arguments and no search path yields no
// inputs and no error.
func TestGatherInputsEmpty(t *testing.T) {
	inputs, err := gatherInputs(nil, nil, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 0 {
		t.Errorf("got %d inputs, want 0", len(inputs))
	}
}

// TestGatherInputsSingleFile tests expanding a single file argument.
func TestGatherInputsSingleFile(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	path := filepath.Join(tmpdir, "page.tpl")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := gatherInputs([]string{path}, nil, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1", len(inputs))
	}

	if inputs[0].name != "page.tpl" {
		t.Errorf("got name %q, want %q", inputs[0].name, "page.tpl")
	}

	if inputs[0].stdin() {
		t.Error("file input reported as stdin")
	}
}

// TestGatherInputsExplicitFileAnyExtension tests that an explicitly named
// file is accepted regardless of its extension.
func TestGatherInputsExplicitFileAnyExtension(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	path := filepath.Join(tmpdir, "page.html")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := gatherInputs([]string{path}, nil, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1 (extension filter applies to directories only)", len(inputs))
	}
}

// TestGatherInputsDirectoryWalk tests recursive expansion of a directory
// argument with extension filtering and root-relative names.
func TestGatherInputsDirectoryWalk(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	if err := os.MkdirAll(filepath.Join(tmpdir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"a.tpl":                          "<p>a</p>",
		filepath.Join("sub", "b.tmpl"):   "<p>b</p>",
		"notes.txt":                      "not a template",
		filepath.Join("sub", "skip.css"): "body {}",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpdir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	inputs, err := gatherInputs([]string{tmpdir}, nil, []string{".tpl", ".tmpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	want := []string{"a.tpl", filepath.Join("sub", "b.tmpl")}

	if len(inputs) != len(want) {
		t.Fatalf("got %d inputs, want %d", len(inputs), len(want))
	}

	for i, name := range want {
		if inputs[i].name != name {
			t.Errorf("input %d: got name %q, want %q", i, inputs[i].name, name)
		}
	}
}

// TestGatherInputsDuplicatePaths tests deduplication of identical paths.
func TestGatherInputsDuplicatePaths(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	path := filepath.Join(tmpdir, "page.tpl")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := gatherInputs([]string{path, path, path}, nil, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 1 {
		t.Errorf("got %d inputs, want 1 (file should only be gathered once)", len(inputs))
	}
}

// TestGatherInputsSymlinkDuplicates tests dedup of a symlink and its target.
func TestGatherInputsSymlinkDuplicates(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	realFile := filepath.Join(tmpdir, "real.tpl")
	if err := os.WriteFile(realFile, []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	symlink := filepath.Join(tmpdir, "link.tpl")
	if err := os.Symlink(realFile, symlink); err != nil {
		t.Fatal(err)
	}

	inputs, err := gatherInputs([]string{realFile, symlink}, nil, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1 (symlink should dedup to target)", len(inputs))
	}

	if inputs[0].name != "real.tpl" {
		t.Errorf("got name %q, want %q (first occurrence wins)", inputs[0].name, "real.tpl")
	}
}

// TestGatherInputsStdinCollapsed tests that all "-" arguments collapse into a
// single stdin input placed last.
func TestGatherInputsStdinCollapsed(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	path := filepath.Join(tmpdir, "page.tpl")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := gatherInputs([]string{"-", path, "-"}, nil, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 2 {
		t.Fatalf("got %d inputs, want 2 (stdin should collapse)", len(inputs))
	}

	if inputs[0].stdin() {
		t.Error("file input should precede stdin")
	}

	last := inputs[len(inputs)-1]
	if !last.stdin() {
		t.Error("stdin input should be placed last")
	}

	if last.name != stdinName {
		t.Errorf("got stdin name %q, want %q", last.name, stdinName)
	}
}

// TestGatherInputsSearchPath tests resolving a bare file name against the
// search path directories.
func TestGatherInputsSearchPath(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	name := "tplc-search-test.tpl"
	if err := os.WriteFile(filepath.Join(tmpdir, name), []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := gatherInputs([]string{name}, []string{tmpdir}, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1", len(inputs))
	}

	if inputs[0].name != name {
		t.Errorf("got name %q, want %q", inputs[0].name, name)
	}
}

// TestGatherInputsMissingInput tests that a named file found nowhere is an
// error rather than a silent skip.
func TestGatherInputsMissingInput(t *testing.T) {
	_, err := gatherInputs([]string{"no-such-template.tpl"}, nil, []string{".tpl"})
	if err == nil {
		t.Fatal("gatherInputs() expected error for missing input, got nil")
	}

	if !strings.Contains(err.Error(), "input not found") {
		t.Errorf("got error %q, want mention of missing input", err)
	}
}

// TestGatherInputsImplicitSearchWalk tests that with no arguments the search
// path directories are walked, skipping ones that do not exist.
func TestGatherInputsImplicitSearchWalk(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	if err := os.WriteFile(filepath.Join(tmpdir, "a.tpl"), []byte("<p>a</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	search := []string{
		filepath.Join(tmpdir, "does-not-exist"),
		tmpdir,
	}

	inputs, err := gatherInputs(nil, search, []string{".tpl"})
	if err != nil {
		t.Fatalf("gatherInputs() unexpected error = %v", err)
	}

	if len(inputs) != 1 {
		t.Fatalf("got %d inputs, want 1", len(inputs))
	}

	if inputs[0].name != "a.tpl" {
		t.Errorf("got name %q, want %q", inputs[0].name, "a.tpl")
	}
}

// TestMatchesExt tests extension matching rules.
func TestMatchesExt(t *testing.T) {
	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{"page.tpl", []string{".tpl"}, true},
		{"page.TPL", []string{".tpl"}, true},
		{"page.tpl", []string{"tpl"}, true},
		{"page.tmpl", []string{".tpl", ".tmpl"}, true},
		{"page.txt", []string{".tpl"}, false},
		{"page", []string{".tpl"}, false},
	}

	for _, tt := range tests {
		got := matchesExt(tt.path, tt.exts)
		if got != tt.want {
			t.Errorf("matchesExt(%q, %v) = %v, want %v", tt.path, tt.exts, got, tt.want)
		}
	}
}

// TestWithSearchPath tests storing and retrieving the search path through a
// context.
func TestWithSearchPath(t *testing.T) {
	dirs := []string{"/a", "/b"}

	ctx := WithSearchPath(context.Background(), dirs)

	got := searchPathFrom(ctx)
	if len(got) != len(dirs) {
		t.Fatalf("got %d dirs, want %d", len(got), len(dirs))
	}

	for i := range dirs {
		if got[i] != dirs[i] {
			t.Errorf("dir %d: got %q, want %q", i, got[i], dirs[i])
		}
	}

	if searchPathFrom(context.Background()) != nil {
		t.Error("searchPathFrom() without value should return nil")
	}
}

// TestInputRead tests reading input contents from a file and from stdin.
func TestInputRead(t *testing.T) {
	tmpdir, err := os.MkdirTemp("", "tplc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	path := filepath.Join(tmpdir, "page.tpl")
	content := "<p>file</p>"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := input{name: "page.tpl", path: path}.read()
	if err != nil {
		t.Fatalf("read() unexpected error = %v", err)
	}

	if string(data) != content {
		t.Errorf("got %q, want %q", string(data), content)
	}

	// Swap stdin for a pipe carrying known content.
	oldStdin := os.Stdin
	defer func() { os.Stdin = oldStdin }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdin = r

	go func() {
		defer w.Close()
		io.WriteString(w, "<p>stdin</p>")
	}()

	data, err = input{name: stdinName}.read()
	if err != nil {
		t.Fatalf("read() unexpected error = %v", err)
	}

	if string(data) != "<p>stdin</p>" {
		t.Errorf("got %q, want %q", string(data), "<p>stdin</p>")
	}
}
