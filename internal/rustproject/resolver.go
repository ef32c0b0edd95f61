package rustproject

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shezw/gn/internal/buildgraph"
)

// crateState tracks a crate's progress through resolution. Making the
// lifecycle explicit turns the "seen but never finalized" case into a
// checkable branch instead of a silently dropped edge.
type crateState int

const (
	// stateUnvisited: the crate has not been reached yet.
	stateUnvisited crateState = iota
	// stateResolving: the crate's dependencies are being resolved; its
	// own index is not assigned yet. Reaching a crate in this state
	// through a dependency edge means the graph has a cycle.
	stateResolving
	// stateFinalized: the crate holds its index in the output list.
	stateFinalized
)

// crateInfo is the per-crate bookkeeping used while constructing the
// crate list, keyed by crate root and discarded after export.
type crateInfo struct {
	targets []*buildgraph.Target
	state   crateState
	index   int
}

// depSet is an insertion-ordered set of crate roots. Order preserved
// for determinism; duplicates rejected even when a crate is reachable
// through several grouping nodes.
type depSet struct {
	roots []buildgraph.SourceFile
	seen  map[buildgraph.SourceFile]struct{}
}

func newDepSet() *depSet {
	return &depSet{seen: make(map[buildgraph.SourceFile]struct{})}
}

func (s *depSet) add(root buildgraph.SourceFile) {
	if _, dup := s.seen[root]; dup {
		return
	}
	s.seen[root] = struct{}{}
	s.roots = append(s.roots, root)
}

// resolver owns all state of one export: the grouped crates, the
// sysroot registries, and the growing crate list. It is created, run
// and discarded inside a single RenderJSON call.
type resolver struct {
	settings         *buildgraph.BuildSettings
	defaultToolchain buildgraph.Label
	sysrootTable     *sysrootTable
	log              *zap.Logger

	// lookup maps crate root to bookkeeping; roots keeps the grouping
	// order so resolution is deterministic.
	lookup map[buildgraph.SourceFile]*crateInfo
	roots  []buildgraph.SourceFile

	// sysroots maps sysroot path to the per-sysroot index table,
	// populated at most once per path.
	sysroots map[string]sysrootCrateIndexMap

	crates []*crate
}

func newResolver(settings *buildgraph.BuildSettings, defaultToolchain buildgraph.Label, table *sysrootTable, log *zap.Logger) *resolver {
	return &resolver{
		settings:         settings,
		defaultToolchain: defaultToolchain,
		sysrootTable:     table,
		log:              log,
		lookup:           make(map[buildgraph.SourceFile]*crateInfo),
		sysroots:         make(map[string]sysrootCrateIndexMap),
	}
}

// groupTargets buckets every directly-compiled Rust target by crate
// root. A crate often has several targets, typically the library plus
// its unit-test binary. Targets that are not binaries or compile no
// Rust are silently excluded.
func (r *resolver) groupTargets(targets []*buildgraph.Target) {
	for _, target := range targets {
		if !target.IsBinary() || !target.RustSourceUsed {
			continue
		}
		root := target.RustCrateRoot
		info, ok := r.lookup[root]
		if !ok {
			info = &crateInfo{}
			r.lookup[root] = info
			r.roots = append(r.roots, root)
		}
		info.targets = append(info.targets, target)
	}
}

// resolve finalizes every grouped crate in dependency-first order and
// returns the finished crate list, owned by the caller.
func (r *resolver) resolve() ([]*crate, error) {
	for _, root := range r.roots {
		if err := r.addCrate(root, r.lookup[root]); err != nil {
			return nil, err
		}
	}
	return r.crates, nil
}

// collectRustDeps gathers the crate roots a target links against,
// expanding grouping nodes recursively. A Rust dependency is opaque:
// its own dependencies are found when that crate is resolved, not
// here. The stack set catches grouping-node cycles, which would
// otherwise recurse without bound.
func collectRustDeps(target *buildgraph.Target, deps *depSet, stack map[*buildgraph.Target]bool) error {
	for _, dep := range target.LinkedDeps {
		switch {
		case dep.RustSourceUsed:
			deps.add(dep.RustCrateRoot)
		case dep.Type == buildgraph.Group:
			if stack[dep] {
				return fmt.Errorf("group %s participates in a dependency cycle", dep.Label)
			}
			stack[dep] = true
			if err := collectRustDeps(dep, deps, stack); err != nil {
				return err
			}
			delete(stack, dep)
		}
	}
	return nil
}

// preferredTarget picks the single target whose metadata represents
// the crate in editor tooling, favoring (1) the default toolchain and
// (2) non-testonly configurations. Ties keep the first target scanned.
func (r *resolver) preferredTarget(targets []*buildgraph.Target) *buildgraph.Target {
	score := func(t *buildgraph.Target) int {
		n := 0
		if t.Toolchain.Label.String() == r.defaultToolchain.String() {
			n += 2
		}
		if !t.Testonly {
			n++
		}
		return n
	}
	best := targets[0]
	bestScore := score(best)
	for _, t := range targets[1:] {
		if s := score(t); s > bestScore {
			best, bestScore = t, s
		}
	}
	return best
}

// addCrate finalizes one crate, resolving its dependencies first so
// every dependency edge references an already-assigned index.
func (r *resolver) addCrate(root buildgraph.SourceFile, info *crateInfo) error {
	if info.state != stateUnvisited {
		// Already finalized, or on the resolution stack via a diamond
		// or self edge. Either way there is nothing to do here; a true
		// cycle is diagnosed by the caller at edge-recording time.
		return nil
	}
	info.state = stateResolving

	mainTarget := r.preferredTarget(info.targets)
	compilerArgs := extractCompilerArgs(mainTarget)
	flags := scanArgs(compilerArgs, exportFlags)

	// Check what sysroot this crate's toolchain needs and synthesize
	// its crates before this one so they hold lower indices.
	rustTool := mainTarget.Toolchain.RustToolForTarget(mainTarget)
	sysroot := ""
	if rustTool != nil {
		sysroot = rustTool.Sysroot
	}
	if sysroot != "" {
		r.addSysroot(sysroot)
	}

	// Gather dependencies from every target in the same toolchain as
	// the preferred one. The extra targets are typically test binaries,
	// which is how test-only dependencies get recorded.
	crateDeps := newDepSet()
	for _, target := range info.targets {
		if target.Toolchain.Label.String() != mainTarget.Toolchain.Label.String() {
			continue
		}
		if err := collectRustDeps(target, crateDeps, make(map[*buildgraph.Target]bool)); err != nil {
			return err
		}
	}

	// Recurse so dependencies get their indices first.
	for _, dep := range crateDeps.roots {
		if dep == root {
			continue
		}
		depInfo, ok := r.lookup[dep]
		if !ok {
			return fmt.Errorf("crate %s depends on %s, which is not part of the build graph", root, dep)
		}
		if err := r.addCrate(dep, depInfo); err != nil {
			return err
		}
	}

	edition, ok := flags.PrefixFirst("edition")
	if !ok {
		edition, ok = flags.SeparateFirst("edition")
	}
	if !ok {
		edition = "2015"
	}

	index := len(r.crates)
	info.state = stateFinalized
	info.index = index

	c := &crate{
		root:         root,
		targets:      info.targets,
		genDir:       mainTarget.GenDir,
		index:        index,
		name:         mainTarget.RustCrateName,
		label:        mainTarget.Label.UserVisibleName(false),
		edition:      edition,
		compilerArgs: compilerArgs,
	}
	if triple, ok := flags.FirstAny("target"); ok {
		c.compilerTarget = triple
	}

	c.addConfig("test")
	c.addConfig("debug_assertions")
	for _, cfg := range flags.AllPrefix("cfg") {
		c.addConfig(cfg)
	}
	// Widen with cfgs from the other targets in the same toolchain, so
	// test-only cfgs show up too.
	for _, target := range info.targets {
		if target == mainTarget {
			continue
		}
		if target.Toolchain.Label.String() != mainTarget.Toolchain.Label.String() {
			continue
		}
		extra := scanArgs(extractCompilerArgs(target), exportFlags)
		for _, cfg := range extra.AllPrefix("cfg") {
			c.addConfig(cfg)
		}
	}

	isMacro := rustTool != nil && rustTool.Name == buildgraph.RustToolMacro

	// Wire the standard-library edges; components absent from the
	// sysroot table simply produce no edge.
	if sysroot != "" {
		lookup := r.sysroots[sysroot]
		addSysrootDependency(c, lookup, "core")
		addSysrootDependency(c, lookup, "alloc")
		addSysrootDependency(c, lookup, "std")

		// Proc macros additionally link the proc_macro crate.
		if isMacro {
			addSysrootDependency(c, lookup, "proc_macro")
		}
	}

	if isMacro && len(mainTarget.ComputedOutputs) > 0 {
		c.setProcMacroDylib(mainTarget.ComputedOutputs[0])
	}

	// Record rustenv for every crate, not just proc macros: macros
	// invoked while expanding this crate may read these.
	for _, entry := range extractRustEnv(mainTarget) {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		c.addEnv(name, value)
	}

	for _, dep := range crateDeps.roots {
		if dep == root {
			continue
		}
		depInfo := r.lookup[dep]
		if depInfo.state != stateFinalized {
			return fmt.Errorf("dependency cycle through crate %s: %s was reached before it finished resolving", root, dep)
		}
		c.addDependency(depInfo.index, r.crates[depInfo.index].name)
	}

	r.crates = append(r.crates, c)
	r.log.Debug("finalized crate",
		zap.String("root", string(root)),
		zap.Int("index", index),
		zap.Int("deps", len(c.deps)))
	return nil
}

// extractRustEnv flattens a target's per-configuration rustenv entries
// in configuration order.
func extractRustEnv(target *buildgraph.Target) []string {
	var env []string
	for _, cfg := range target.Configs {
		env = append(env, cfg.RustEnv...)
	}
	return env
}
