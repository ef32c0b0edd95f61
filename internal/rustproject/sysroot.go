package rustproject

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/shezw/gn/internal/buildgraph"
)

// sysrootTable lists the standard-library crates a sysroot provides
// and their fixed inter-dependencies. The table is data, not derived
// from the build graph; the built-in copy tracks the layout rustc
// ships and can be overridden from a TOML file when upstream changes
// the dependency structure.
type sysrootTable struct {
	Crates []string            `toml:"crates"`
	Deps   map[string][]string `toml:"deps"`
}

func defaultSysrootTable() *sysrootTable {
	return &sysrootTable{
		Crates: []string{
			"std", "core", "alloc", "panic_unwind",
			"proc_macro", "test", "panic_abort", "unwind",
		},
		Deps: map[string][]string{
			"alloc": {"core"},
			"std":   {"alloc", "core", "panic_abort", "unwind"},
		},
	}
}

// loadSysrootTable reads a table override from a TOML file.
func loadSysrootTable(path string) (*sysrootTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sysroot table: %w", err)
	}
	var table sysrootTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse sysroot table %s: %w", path, err)
	}
	if len(table.Crates) == 0 {
		return nil, fmt.Errorf("sysroot table %s lists no crates", path)
	}
	if table.Deps == nil {
		table.Deps = make(map[string][]string)
	}
	return &table, nil
}

// sysrootCrateIndexMap maps a synthesized crate's name to its index in
// the output list, one map per distinct sysroot.
type sysrootCrateIndexMap map[string]int

// addSysroot synthesizes crate entries for every standard-library
// component of the sysroot, once per distinct sysroot path.
func (r *resolver) addSysroot(sysroot string) {
	if _, done := r.sysroots[sysroot]; done {
		return
	}
	lookup := make(sysrootCrateIndexMap)
	r.sysroots[sysroot] = lookup
	r.log.Debug("synthesizing sysroot crates", zap.String("sysroot", sysroot))

	for _, name := range r.sysrootTable.Crates {
		r.addSysrootCrate(name, sysroot, lookup)
	}
}

// addSysrootCrate synthesizes one standard-library crate, recursing
// into its fixed dependencies first so they hold lower indices.
// Idempotent per crate name within a sysroot.
func (r *resolver) addSysrootCrate(name, sysroot string, lookup sysrootCrateIndexMap) {
	if _, done := lookup[name]; done {
		return
	}

	deps := r.sysrootTable.Deps[name]
	for _, dep := range deps {
		r.addSysrootCrate(dep, sysroot, lookup)
	}

	index := len(r.crates)
	lookup[name] = index

	// Sysroot sources live under the toolchain install root, resolved
	// relative to the build directory.
	buildDir := r.settings.FullPathDir(r.settings.BuildDir)
	root := buildgraph.SourceFile(buildDir + "/" + sysroot +
		"/lib/rustlib/src/rust/library/" + name + "/src/lib.rs")

	c := &crate{
		root:    root,
		index:   index,
		name:    name,
		label:   name,
		edition: "2018",
	}
	c.addConfig("debug_assertions")
	for _, dep := range deps {
		c.addDependency(lookup[dep], dep)
	}
	r.crates = append(r.crates, c)
}

// addSysrootDependency wires an edge from the crate to a synthesized
// sysroot crate, if that component is present in the sysroot.
func addSysrootDependency(c *crate, lookup sysrootCrateIndexMap, name string) {
	if index, ok := lookup[name]; ok {
		c.addDependency(index, name)
	}
}
