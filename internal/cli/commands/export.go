package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shezw/gn/internal/buildgraph"
	"github.com/shezw/gn/internal/cli/config"
	"github.com/shezw/gn/internal/rustproject"
	"github.com/shezw/gn/internal/watch"
)

var (
	exportGraph       string
	exportOutput      string
	exportSysrootDeps string
	exportWatch       bool
	exportVerbose     bool
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a rust-project.json descriptor",
		Long: `Export a rust-project.json descriptor for the crates of a resolved
build graph.

The command reads a build-graph snapshot (as produced by the build
frontend), groups Rust targets into crates, resolves the crate graph
in dependency-first order, and writes the descriptor into the build
directory. The file is rewritten only when its content changes.`,
		Example: `  # Export once from a graph snapshot
  gn export --graph out/graph.json

  # Re-export whenever the snapshot changes
  gn export --graph out/graph.json --watch`,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportGraph, "graph", "", "Path to the build-graph snapshot file (default <build_dir>/graph.json)")
	cmd.Flags().StringVar(&exportOutput, "output", "", "Descriptor file name, relative to the build directory")
	cmd.Flags().StringVar(&exportSysrootDeps, "sysroot-deps", "", "TOML file overriding the sysroot crate table")
	cmd.Flags().BoolVar(&exportWatch, "watch", false, "Keep running and re-export when inputs change")
	cmd.Flags().BoolVar(&exportVerbose, "verbose", false, "Show detailed export diagnostics")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	graph := exportGraph
	if graph == "" {
		graph = filepath.Join(cfg.BuildDir, "graph.json")
	}
	fileName := exportOutput
	if fileName == "" {
		fileName = cfg.Export.RustProject
	}
	sysrootDeps := exportSysrootDeps
	if sysrootDeps == "" {
		sysrootDeps = cfg.Export.SysrootDeps
	}

	log := zap.NewNop()
	if exportVerbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync()
	}

	export := func() error {
		return exportOnce(graph, fileName, sysrootDeps, log)
	}

	if err := export(); err != nil {
		return err
	}

	if !exportWatch {
		return nil
	}

	inputs := []string{graph}
	if sysrootDeps != "" {
		inputs = append(inputs, sysrootDeps)
	}
	watcher, err := watch.NewFileWatcher(inputs, log, func(changed []string) error {
		fmt.Printf("Re-exporting (%d file(s) changed)\n", len(changed))
		return export()
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	color.New(color.FgGreen).Printf("Watching %s for changes, Ctrl-C to stop\n", graph)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

// exportOnce performs a single export. Every input, including the
// sysroot table, is re-read on each call so watch-triggered runs see
// edits to all of them.
func exportOnce(graph, fileName, sysrootDeps string, log *zap.Logger) error {
	opts := []rustproject.Option{rustproject.WithLogger(log)}
	if sysrootDeps != "" {
		opts = append(opts, rustproject.WithSysrootTableFile(sysrootDeps))
	}
	writer, err := rustproject.NewWriter(opts...)
	if err != nil {
		return err
	}
	builder, settings, err := buildgraph.LoadSnapshot(graph)
	if err != nil {
		return err
	}
	return writer.RunAndWriteFiles(settings, builder, fileName)
}
