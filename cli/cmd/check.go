package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/tplc/lang"
)

// Check validates templates without writing any output.
//
// Every input runs the full compile pipeline, so structural faults,
// unknown directives, bad option tags, and malformed guard expressions
// all surface. Like build, failures are collected per file.
type Check struct {
	Paths []string `arg:"" help:"Template files or directories" name:"path" optional:""`

	Jobs int      `default:"0"          help:"Maximum concurrent validations (0 means all CPUs)" short:"j"`
	Ext  []string `default:".tpl,.tmpl" help:"Template file extensions"`

	compileFlags `embed:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := c.options()
	if err != nil {
		return err
	}

	inputs, err := gatherInputs(c.Paths, searchPathFrom(ctx), c.Ext)
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		return ErrNoInputs
	}

	start := time.Now()
	compiler := lang.NewCompiler(opts...)
	results := make([]result, len(inputs))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(maxJobs(c.Jobs))

	for i, in := range inputs {
		grp.Go(func() error {
			results[i] = checkOne(gctx, compiler, in)

			return nil
		})
	}

	_ = grp.Wait()

	report(os.Stderr, results, time.Since(start))

	if n := failures(results); n > 0 {
		return ErrCheckFailed.With(
			slog.Int("failed", n),
			slog.Int("total", len(results)),
		)
	}

	return nil
}

// checkOne runs one input through the pipeline and records the outcome.
func checkOne(ctx context.Context, c *lang.Compiler, in input) result {
	res := result{in: in}

	data, err := in.read()
	if err != nil {
		res.err = ErrReadInput.Wrap(err).
			With(slog.String("path", in.path))

		return res
	}

	_, res.err = c.Parse(ctx, in.name, string(data))

	return res
}
