package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tplc/lang"
)

// Dump prints the optimized parse tree of a single template, in canonical
// markup or as a JSON or YAML document. With --symbols it compiles the
// template and prints the debug symbol table instead.
type Dump struct {
	Source string `arg:"" default:"-" help:"Template file or '-' for stdin" name:"source"`

	Format  string `default:"markup" enum:"markup,json,yaml" help:"Output format"                                    short:"F"`
	Indent  int    `default:"2"                              help:"Indent width for structured output"               short:"i"`
	Symbols bool   `                                         help:"Print the debug symbol table instead of the tree"`

	compileFlags `embed:""`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := d.options()
	if err != nil {
		return err
	}

	if d.Symbols {
		opts = append(opts, lang.WithDebugSymbols(true))
	}

	var file *os.File
	if d.Source == stdinSource {
		file = os.Stdin
	} else {
		file, err = os.Open(d.Source)
		if err != nil {
			return err
		}
		defer file.Close()
	}

	name := d.Source
	if name == stdinSource {
		name = stdinName
	}

	c := lang.NewCompiler(opts...)

	if d.Symbols {
		return dumpSymbols(ctx, c, name, file)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return ErrReadInput.Wrap(err).
			With(slog.String("source", name))
	}

	tree, err := c.Parse(ctx, name, string(data))
	if err != nil {
		return err
	}

	switch d.Format {
	case "json":
		return tree.FormatJSON(ctx, os.Stdout, d.Indent)

	case "yaml":
		return tree.FormatYAML(ctx, os.Stdout, d.Indent)

	default:
		return tree.Format(ctx, os.Stdout, lang.DefaultSyntax())
	}
}

// dumpSymbols compiles the input and prints its symbol table as YAML.
func dumpSymbols(
	ctx context.Context,
	c *lang.Compiler,
	name string,
	r io.Reader,
) error {
	res, err := c.CompileReader(ctx, name, r)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(res.Symbols)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err).
			With(slog.String("source", name))
	}

	_, err = os.Stdout.Write(data)

	return err
}
