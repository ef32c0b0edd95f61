package rustproject

import (
	"github.com/shezw/gn/internal/buildgraph"
)

// dependency is one edge of the finished crate graph: the index of the
// dependency crate in the output list, plus its extern name.
type dependency struct {
	index int
	name  string
}

// envVar is one NAME=VALUE environment entry, kept as a pair so the
// serializer can preserve insertion order.
type envVar struct {
	key   string
	value string
}

// crate is one entry of the finished crate list. Immutable once the
// resolver moves past it; all fields are set during finalization.
type crate struct {
	// root is the crate's primary source file and its identity.
	root buildgraph.SourceFile
	// targets are the build-graph targets that produce this crate.
	// Empty for synthesized sysroot crates.
	targets []*buildgraph.Target
	// genDir is the generated-file search path of the preferred
	// target, empty when there is none.
	genDir buildgraph.OutputFile
	// index is the crate's stable position in the output list.
	index int

	name    string
	label   string
	edition string

	// compilerArgs are the raw flag tokens, in invocation order.
	compilerArgs []string
	// compilerTarget is the --target triple override, empty if none.
	compilerTarget string

	// configs are the cfg flags in extraction order; duplicates kept.
	configs []string
	// deps are dependency edges in resolution order.
	deps []dependency
	// env holds rustenv entries in declaration order.
	env []envVar

	// procMacroDylib is the compiled proc-macro artifact, set only for
	// macro crates with at least one computed output.
	procMacroDylib    buildgraph.OutputFile
	hasProcMacroDylib bool
}

func (c *crate) addConfig(cfg string) {
	c.configs = append(c.configs, cfg)
}

func (c *crate) addDependency(index int, name string) {
	c.deps = append(c.deps, dependency{index: index, name: name})
}

func (c *crate) addEnv(key, value string) {
	c.env = append(c.env, envVar{key: key, value: value})
}

func (c *crate) setProcMacroDylib(out buildgraph.OutputFile) {
	c.procMacroDylib = out
	c.hasProcMacroDylib = true
}
