package cmd

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
)

// contextKey keys the kong context stored by [WithContext].
type contextKey struct{}

// WithContext records the parsed kong context for command Run methods,
// which read flag values and configuration paths through it.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// searchPathKey is used to store the template search path in
// [context.Context].
type searchPathKey struct{}

// WithSearchPath returns a new context.Context containing the ordered list
// of directories searched for template inputs.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// Arguments spell standard input as "-"; its artifact is named "stdin".
const (
	stdinSource = "-"
	stdinName   = "stdin"
)

// input is one template source to compile. The name doubles as the
// output-relative path for compiled artifacts.
type input struct {
	name string
	path string // filesystem path; empty for stdin
}

// stdin reports whether the input reads from standard input.
func (in input) stdin() bool { return in.path == "" }

// read returns the full contents of the input.
func (in input) read() ([]byte, error) {
	if in.stdin() {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(in.path)
}

// gatherInputs expands path arguments into the deduplicated list of
// template inputs.
//
// Directory arguments are walked recursively, collecting files whose
// extension matches exts; their names are recorded relative to the walked
// directory so compiled output mirrors the source layout. A file argument
// that does not resolve from the working directory is looked up in the
// search path directories. All occurrences of "-" collapse into a single
// stdin input placed last. When no arguments are given, the search path
// directories themselves are walked.
//
// Duplicates are detected by resolving symlinks and comparing device/inode
// pairs, so the same template named twice compiles once.
func gatherInputs(args, search, exts []string) ([]input, error) {
	seen := make(map[fileID]struct{})
	inputs := make([]input, 0, len(args))

	if len(args) == 0 {
		// Implicit inputs: walk whichever search path directories exist.
		for _, dir := range search {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}

			err = walkTemplates(dir, exts, seen, &inputs)
			if err != nil {
				return nil, ErrWalkInputs.Wrap(err).
					With(slog.String("path", dir))
			}
		}

		return inputs, nil
	}

	var stdin bool

	for _, arg := range args {
		if arg == stdinSource {
			stdin = true

			continue
		}

		path := arg

		info, err := os.Stat(path)
		if err != nil {
			found, ok := searchFor(arg, search)
			if !ok {
				return nil, ErrInputNotFound.Wrap(err).
					With(slog.String("path", arg))
			}

			path = found

			info, err = os.Stat(path)
			if err != nil {
				return nil, ErrInputNotFound.Wrap(err).
					With(slog.String("path", arg))
			}
		}

		if info.IsDir() {
			err = walkTemplates(path, exts, seen, &inputs)
			if err != nil {
				return nil, ErrWalkInputs.Wrap(err).
					With(slog.String("path", arg))
			}

			continue
		}

		in, ok := uniqueInput(path, filepath.Base(path), seen)
		if ok {
			inputs = append(inputs, in)
		}
	}

	if stdin {
		inputs = append(inputs, input{name: stdinName})
	}

	return inputs, nil
}

// walkTemplates collects every file under root whose extension matches
// exts, named relative to root.
func walkTemplates(
	root string,
	exts []string,
	seen map[fileID]struct{},
	inputs *[]input,
) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !matchesExt(path, exts) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = d.Name()
		}

		in, ok := uniqueInput(path, rel, seen)
		if ok {
			*inputs = append(*inputs, in)
		}

		return nil
	})
}

// searchFor resolves a bare file name against the search path directories,
// returning the first match.
func searchFor(name string, search []string) (string, bool) {
	for _, dir := range search {
		candidate := filepath.Join(dir, name)

		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	return "", false
}

// matchesExt reports whether the file name carries one of the template
// extensions. Extensions compare case-insensitively, with or without a
// leading dot.
func matchesExt(path string, exts []string) bool {
	ext := filepath.Ext(path)

	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		if strings.EqualFold(ext, e) {
			return true
		}
	}

	return false
}

// fileID is a file's device and inode pair, so the same template
// reached through different paths or symlinks registers once.
type fileID struct {
	dev uint64
	ino uint64
}

// ident extracts the fileID of info. It reports false on filesystems
// whose Sys() is not a *syscall.Stat_t.
func ident(info os.FileInfo) (fileID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}

	return fileID{dev: stat.Dev, ino: stat.Ino}, true
}

// uniqueInput registers the file at path under its fileID, resolving
// symlinks first. It reports false for duplicates and for files whose
// identity cannot be established.
func uniqueInput(path, name string, seen map[fileID]struct{}) (input, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return input{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return input{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return input{}, false
	}

	id, ok := ident(info)
	if !ok {
		return input{}, false
	}

	if _, dup := seen[id]; dup {
		return input{}, false
	}

	seen[id] = struct{}{}

	return input{name: name, path: resolved}, true
}
