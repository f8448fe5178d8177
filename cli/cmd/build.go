package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/tplc/lang"
	"github.com/ardnew/tplc/log"
)

// Build compiles templates into static output ahead of deployment.
//
// Compiled artifacts mirror the source layout under the output
// directory. Inputs whose content hash matches the freshness index are
// skipped unless --all is given. Compilation errors are collected per
// file so one broken template never hides the rest of the report.
type Build struct {
	Paths []string `arg:"" help:"Template files or directories" name:"path" optional:""`

	Output   string   `default:"dist"        help:"Output directory for compiled templates"            short:"o" type:"path"`
	Cache    string   `default:"${cache}"    help:"Directory for freshness stamps"                               type:"path"`
	All      bool     `                      help:"Recompile everything, ignoring freshness stamps"    short:"a"`
	Jobs     int      `default:"0"           help:"Maximum concurrent compilations (0 means all CPUs)" short:"j"`
	Ext      []string `default:".tpl,.tmpl"  help:"Template file extensions"`
	Progress bool     `                      help:"Display a progress bar"                             negatable:""`

	compileFlags `embed:""`
}

// result is the outcome of one input.
type result struct {
	in      input
	err     error
	skipped bool
	size    int
	sum     uint64
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := b.options()
	if err != nil {
		return err
	}

	inputs, err := gatherInputs(b.Paths, searchPathFrom(ctx), b.Ext)
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		return ErrNoInputs
	}

	var stampFile string
	if b.Cache != "" {
		stampFile = stampsPath(b.Cache, b.Output)
	}

	index := loadStamps(stampFile)
	start := time.Now()

	results := b.compile(ctx, lang.NewCompiler(opts...), index, inputs)

	for _, res := range results {
		if res.err == nil && !res.skipped && !res.in.stdin() {
			index.record(res.in.name, res.sum)
		}
	}

	if stampFile != "" {
		err := index.save(stampFile)
		if err != nil {
			log.WarnContext(ctx, "freshness stamps not saved",
				slog.Any("error", err),
			)
		}
	}

	report(os.Stderr, results, time.Since(start))

	if n := failures(results); n > 0 {
		return ErrBuildFailed.With(
			slog.Int("failed", n),
			slog.Int("total", len(results)),
		)
	}

	return nil
}

// compile runs every input through the compiler, bounded by the
// configured concurrency. Each input records its own outcome; the batch
// never aborts early on a compile failure.
func (b *Build) compile(
	ctx context.Context,
	c *lang.Compiler,
	index stamps,
	inputs []input,
) []result {
	results := make([]result, len(inputs))

	notify := startProgress(ctx, b.Progress, len(inputs))
	defer notify.done()

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(maxJobs(b.Jobs))

	for i, in := range inputs {
		grp.Go(func() error {
			results[i] = b.compileOne(gctx, c, index, in)
			notify.step(in.name, results[i].err != nil)

			return nil
		})
	}

	_ = grp.Wait()

	return results
}

// compileOne compiles a single input and writes its artifacts.
func (b *Build) compileOne(
	ctx context.Context,
	c *lang.Compiler,
	index stamps,
	in input,
) result {
	res := result{in: in}

	// Stdin compiles to stdout and never participates in freshness.
	if in.stdin() {
		out, err := c.CompileReader(ctx, in.name, os.Stdin)
		if err != nil {
			res.err = err

			return res
		}

		res.size = len(out.Output)
		_, res.err = io.WriteString(os.Stdout, out.Output)

		return res
	}

	data, err := os.ReadFile(in.path)
	if err != nil {
		res.err = ErrReadInput.Wrap(err).
			With(slog.String("path", in.path))

		return res
	}

	res.sum = xxh3.Hash(data)
	outPath := filepath.Join(b.Output, in.name)

	if !b.All && index.fresh(in.name, res.sum) && exists(outPath) {
		res.skipped = true

		return res
	}

	out, err := c.Compile(ctx, in.name, string(data))
	if err != nil {
		res.err = err

		return res
	}

	res.size = len(out.Output)

	err = os.MkdirAll(filepath.Dir(outPath), 0o755)
	if err == nil {
		err = os.WriteFile(outPath, []byte(out.Output), 0o644)
	}

	if err != nil {
		res.err = ErrWriteOutput.Wrap(err).
			With(slog.String("path", outPath))

		return res
	}

	if out.Symbols != nil {
		res.err = writeSymbols(outPath, out.Symbols)
	}

	return res
}

// writeSymbols drops the symbol table next to the compiled artifact.
func writeSymbols(outPath string, table *lang.SymbolTable) error {
	data, err := yaml.Marshal(table)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err).
			With(slog.String("path", outPath))
	}

	path := outPath + ".sym.yaml"

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return ErrWriteOutput.Wrap(err).
			With(slog.String("path", path))
	}

	return nil
}

// maxJobs clamps the concurrency flag to a usable worker count.
func maxJobs(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}

	return jobs
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// failures counts inputs that did not compile.
func failures(results []result) int {
	n := 0

	for _, res := range results {
		if res.err != nil {
			n++
		}
	}

	return n
}
