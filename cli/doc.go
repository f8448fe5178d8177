// Package cli contains the command line interface for tplc.
//
// # Usage
//
// The CLI compiles hybrid markup templates ahead of deployment:
//
//	tplc build --output dist templates/
//	tplc check templates/page.tpl
//	tplc dump --format yaml templates/page.tpl
//
// # Compiler
//
// The package drives the lang package's compiler:
//
//   - [lang.NewCompiler]: Construct a compiler from functional options
//   - [lang.Compiler.Compile]: Compile a named source string
//   - [lang.Compiler.CompileReader]: Compile from an io.Reader
//   - [lang.Compiler.Parse]: Parse without rendering, for inspection
//
// Compiler behavior is controlled per invocation with [lang.Option] values
// assembled from command-line flags, configuration files, and in-source
// option tags.
//
// # Configuration Loader
//
// The package includes a Kong configuration loader ([resolve]) that reads
// YAML config files and converts them to Kong flag values. A project-local
// tplc.yaml is consulted before the user configuration file.
//
// # Logging Options
//
//   - --log-level: Minimum level to emit (trace, debug, info, warn, error)
//   - --log-format: Record encoding (json, text)
//   - --log-time-layout: Timestamp layout (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Annotate records with the logging call site
//   - --log-pretty: Colorized console rendering (negate with --no-log-pretty)
//
// # Profiling Options
//
// Profiling flags exist only in binaries built with the pprof tag:
//
//	go build -tags pprof -o tplc .
//
// The build then accepts:
//
//   - --pprof-mode: Capture a runtime profile (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: Directory for profile data (default ~/.cache/tplc/pprof)
//
// # Examples
//
//	# Compile every template under templates/ into dist/
//	tplc build --output dist templates/
//
//	# Recompile everything, ignoring freshness stamps
//	tplc build --all --output dist templates/
//
//	# Validate templates without writing output
//	tplc check templates/
//
//	# Inspect the parse tree of a single template
//	tplc dump --format json --indent 2 templates/page.tpl
//
//	# Verbose logging plus a CPU profile (pprof-tagged build)
//	tplc --log-level=debug --pprof-mode=cpu build templates/
package cli
