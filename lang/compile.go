package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"
)

// Result carries the artifacts of one compiled file.
type Result struct {
	// Output is the canonical compiled text.
	Output string

	// Symbols maps output ranges to source spans. Nil unless debug
	// symbols were requested.
	Symbols *SymbolTable
}

// Compiler turns hybrid markup and directive source into canonical
// compiled text. A Compiler is immutable after construction and safe
// for concurrent use; option tags inside a file apply to that file
// alone.
type Compiler struct {
	opts options
	g    *guards
}

// NewCompiler builds a Compiler from the default configuration plus
// the given options.
func NewCompiler(opts ...Option) *Compiler {
	o := defaultOptions().apply(opts...)

	return &Compiler{opts: o, g: newGuards(o.constants)}
}

// Compile runs the full pipeline on src: scan, build, structural
// resolution, the optimizer passes, and serialization. Errors are
// fatal for the file; there is no partial output.
func (c *Compiler) Compile(ctx context.Context, name, src string) (*Result, error) {
	nodes, opts, err := c.pipeline(ctx, name, src)
	if err != nil {
		return nil, err
	}

	var syms *SymbolTable
	if opts.symbols {
		syms = &SymbolTable{Name: name}
	}

	out := serialize(nodes, opts.syntax, syms)

	opts.logger.Debug("compiled",
		slog.String("name", name),
		slog.Int("in", len(src)),
		slog.Int("out", len(out)),
	)

	return &Result{Output: out, Symbols: syms}, nil
}

// CompileReader drains r and compiles the result. The read is
// buffered ahead so large inputs stream in while earlier chunks are
// still being copied.
func (c *Compiler) CompileReader(ctx context.Context, name string, r io.Reader) (*Result, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("name", name))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return c.Compile(ctx, name, string(data))
}

// Parse runs every pipeline stage except serialization and returns
// the optimized tree for inspection.
func (c *Compiler) Parse(ctx context.Context, name, src string) (*Tree, error) {
	nodes, _, err := c.pipeline(ctx, name, src)
	if err != nil {
		return nil, err
	}

	return &Tree{Name: name, Nodes: nodes}, nil
}

func (c *Compiler) pipeline(ctx context.Context, name, src string) ([]Node, options, error) {
	opts := c.opts

	if err := ctx.Err(); err != nil {
		return nil, opts, err
	}

	toks, err := newLexer(src, opts).run()
	if err != nil {
		return nil, opts, err
	}

	res, err := newBuilder(src, toks, opts).run()
	if err != nil {
		return nil, opts, err
	}

	// Option tags already steered the scanner positionally; here they
	// settle the file-wide pass configuration, and an unknown name
	// finally becomes the file's fault.
	for _, tag := range res.settings {
		opt, err := Setting(tag.arg)
		if err != nil {
			var cfg *ConfigError
			if errors.As(err, &cfg) {
				cfg.Span = tag.span
				cfg.Source = src
			}

			return nil, opts, err
		}

		opts = opt(opts)
	}

	nodes, err := resolve(src, res.nodes, opts)
	if err != nil {
		return nil, opts, err
	}

	if err := ctx.Err(); err != nil {
		return nil, opts, err
	}

	nodes = tagAssets(nodes)
	nodes = fold(nodes, c.g, opts)

	if opts.compress {
		compress(nodes, makeTagTable(opts.voidTags, opts.rawTags))
	}

	nodes = mergeAssets(nodes, opts)

	opts.logger.Trace("pipeline done",
		slog.String("name", name),
		slog.Int("nodes", len(nodes)),
	)

	return nodes, opts, nil
}
