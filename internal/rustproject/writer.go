// Package rustproject exports a rust-project.json descriptor of every
// Rust crate in a resolved build graph, for consumption by rust-analyzer
// and similar editor tooling.
//
// Crates are discovered by grouping directly-compiled Rust targets by
// crate root, then finalized by a depth-first traversal that assigns
// dependency-first indices, synthesizes standard-library crates for
// each required sysroot, and extracts per-crate metadata (edition,
// cfgs, target triple, environment) from the raw rustc argument lists.
package rustproject

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/shezw/gn/internal/buildgraph"
	"github.com/shezw/gn/internal/output"
)

// Writer renders and writes the rust-project.json descriptor.
type Writer struct {
	log       *zap.Logger
	table     *sysrootTable
	tablePath string
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger attaches a logger for verbose export diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(w *Writer) { w.log = log }
}

// WithSysrootTableFile overrides the built-in sysroot crate table with
// one loaded from a TOML file.
func WithSysrootTableFile(path string) Option {
	return func(w *Writer) { w.table = nil; w.tablePath = path }
}

// NewWriter creates a Writer with the built-in sysroot table and a
// no-op logger.
func NewWriter(opts ...Option) (*Writer, error) {
	w := &Writer{log: zap.NewNop(), table: defaultSysrootTable()}
	for _, opt := range opts {
		opt(w)
	}
	if w.table == nil {
		table, err := loadSysrootTable(w.tablePath)
		if err != nil {
			return nil, err
		}
		w.table = table
	}
	return w, nil
}

// RunAndWriteFiles renders the descriptor for the builder's graph and
// writes it to fileName, resolved relative to the build directory. The
// file is rewritten only when its content changes.
func (w *Writer) RunAndWriteFiles(settings *buildgraph.BuildSettings, builder *buildgraph.Builder, fileName string) error {
	outputFile, err := settings.ResolveRelativeFile(fileName)
	if err != nil {
		return fmt.Errorf("failed to resolve rust-project output path: %w", err)
	}
	outputPath := settings.FullPath(outputFile)

	var buf output.Buffer
	if err := w.RenderJSON(settings, builder.DefaultToolchain(), builder.ResolvedTargets(), &buf); err != nil {
		return err
	}

	changed, err := buf.WriteToFileIfChanged(outputPath)
	if err != nil {
		return err
	}
	if changed {
		w.log.Info("wrote rust-project descriptor", zap.String("path", outputPath))
	} else {
		w.log.Debug("rust-project descriptor unchanged", zap.String("path", outputPath))
	}
	return nil
}

// RenderJSON resolves the crate graph for all Rust targets and renders
// the descriptor to out.
func (w *Writer) RenderJSON(settings *buildgraph.BuildSettings, defaultToolchain buildgraph.Label, targets []*buildgraph.Target, out io.Writer) error {
	r := newResolver(settings, defaultToolchain, w.table, w.log)
	r.groupTargets(targets)

	crates, err := r.resolve()
	if err != nil {
		return fmt.Errorf("failed to resolve crate graph: %w", err)
	}
	w.log.Debug("resolved crate graph", zap.Int("crates", len(crates)))

	return writeCrates(settings, crates, out)
}

// jsonString renders s as a quoted, escaped JSON string token.
func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail.
		panic(err)
	}
	return string(b)
}

// writeCrates renders the finished crate list. Field order and
// presence follow the descriptor contract exactly: downstream tooling
// keys on which fields appear, and list order mirrors construction
// order so regeneration stays diffable.
func writeCrates(settings *buildgraph.BuildSettings, crates []*crate, out io.Writer) error {
	var buf strings.Builder
	buf.WriteString("{\n")
	buf.WriteString("  \"crates\": [")
	for i, c := range crates {
		if i > 0 {
			buf.WriteString(",")
		}

		rootModule := settings.FullPath(c.root)
		buf.WriteString("\n    {\n")
		fmt.Fprintf(&buf, "      \"crate_id\": %d,\n", c.index)
		fmt.Fprintf(&buf, "      \"root_module\": %s,\n", jsonString(rootModule))
		fmt.Fprintf(&buf, "      \"label\": %s,\n", jsonString(c.label))
		buf.WriteString("      \"source\": {\n")
		buf.WriteString("          \"include_dirs\": [\n")
		fmt.Fprintf(&buf, "               %s", jsonString(settings.FullPathDir(c.root.Dir())))
		if c.genDir != "" {
			genDir := settings.FullPathDir(c.genDir.AsSourceDir(settings))
			fmt.Fprintf(&buf, ",\n               %s\n", jsonString(genDir))
		} else {
			buf.WriteString("\n")
		}
		buf.WriteString("          ],\n")
		buf.WriteString("          \"exclude_dirs\": []\n")
		buf.WriteString("      },\n")

		if c.compilerTarget != "" {
			fmt.Fprintf(&buf, "      \"target\": %s,\n", jsonString(c.compilerTarget))
		}

		if len(c.compilerArgs) > 0 {
			buf.WriteString("      \"compiler_args\": [")
			for j, arg := range c.compilerArgs {
				if j > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(jsonString(arg))
			}
			buf.WriteString("],\n")
		}

		buf.WriteString("      \"deps\": [")
		for j, dep := range c.deps {
			if j > 0 {
				buf.WriteString(",")
			}
			buf.WriteString("\n        {\n")
			fmt.Fprintf(&buf, "          \"crate\": %d,\n", dep.index)
			fmt.Fprintf(&buf, "          \"name\": %s\n", jsonString(dep.name))
			buf.WriteString("        }")
		}
		buf.WriteString("\n      ],\n")

		fmt.Fprintf(&buf, "      \"edition\": %s,\n", jsonString(c.edition))

		if c.hasProcMacroDylib {
			buf.WriteString("      \"is_proc_macro\": true,\n")
			dylib := settings.FullPath(c.procMacroDylib.AsSourceFile(settings))
			fmt.Fprintf(&buf, "      \"proc_macro_dylib_path\": %s,\n", jsonString(dylib))
		}

		buf.WriteString("      \"cfg\": [")
		for j, cfg := range c.configs {
			if j > 0 {
				buf.WriteString(",")
			}
			fmt.Fprintf(&buf, "\n        %s", jsonString(cfg))
		}
		buf.WriteString("\n      ]")

		if len(c.env) > 0 {
			buf.WriteString(",\n")
			buf.WriteString("      \"env\": {")
			for j, env := range c.env {
				if j > 0 {
					buf.WriteString(",")
				}
				fmt.Fprintf(&buf, "\n        %s: %s", jsonString(env.key), jsonString(env.value))
			}
			buf.WriteString("\n      }\n")
		} else {
			buf.WriteString("\n")
		}
		buf.WriteString("    }")
	}
	buf.WriteString("\n  ]\n")
	buf.WriteString("}\n")

	_, err := io.WriteString(out, buf.String())
	return err
}
