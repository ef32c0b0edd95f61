package rustproject

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shezw/gn/internal/buildgraph"
)

func TestSysrootSynthesis(t *testing.T) {
	tc := testToolchain("//toolchain:host", "../rustc")
	lib := rustLib("//a:a", "//a/src/lib.rs", "a", tc)

	crates := resolveTargets(t, lib)
	checkInvariants(t, crates)

	// All eight sysroot crates plus the consumer.
	require.Len(t, crates, 9)

	std := findCrate(t, crates, "std")
	core := findCrate(t, crates, "core")
	alloc := findCrate(t, crates, "alloc")

	// alloc depends on core, which therefore holds a lower index.
	require.Len(t, alloc.deps, 1)
	assert.Equal(t, core.index, alloc.deps[0].index)
	assert.Less(t, core.index, alloc.index)

	// std depends on alloc, core, panic_abort and unwind.
	require.Len(t, std.deps, 4)
	depNames := make([]string, len(std.deps))
	for i, d := range std.deps {
		depNames[i] = d.name
	}
	assert.Equal(t, []string{"alloc", "core", "panic_abort", "unwind"}, depNames)

	// Synthesized crates carry the fixed metadata.
	assert.Equal(t, "2018", core.edition)
	assert.Equal(t, []string{"debug_assertions"}, core.configs)
	wantRoot := "/src/rustc/lib/rustlib/src/rust/library/core/src/lib.rs"
	assert.Equal(t, wantRoot, testSettings().FullPath(core.root))

	// The consumer links core, alloc and std, in that order.
	consumer := findCrate(t, crates, "a")
	require.Len(t, consumer.deps, 3)
	assert.Equal(t, []dependency{
		{index: core.index, name: "core"},
		{index: alloc.index, name: "alloc"},
		{index: std.index, name: "std"},
	}, consumer.deps)
}

func TestSysrootSynthesizedOncePerPath(t *testing.T) {
	tc := testToolchain("//toolchain:host", "../rustc")
	a := rustLib("//a:a", "//a/src/lib.rs", "a", tc)
	b := rustLib("//b:b", "//b/src/lib.rs", "b", tc)

	crates := resolveTargets(t, a, b)
	checkInvariants(t, crates)

	// Eight sysroot crates, once, plus the two consumers.
	assert.Len(t, crates, 10)
}

func TestSysrootAbsentComponentsProduceNoEdge(t *testing.T) {
	table := &sysrootTable{
		Crates: []string{"core", "alloc"},
		Deps:   map[string][]string{"alloc": {"core"}},
	}
	tc := testToolchain("//toolchain:host", "../rustc")
	lib := rustLib("//a:a", "//a/src/lib.rs", "a", tc)

	r := newResolver(testSettings(), buildgraph.ParseLabel("//toolchain:host"), table, zap.NewNop())
	r.groupTargets([]*buildgraph.Target{lib})
	crates, err := r.resolve()
	require.NoError(t, err)
	checkInvariants(t, crates)

	consumer := findCrate(t, crates, "a")
	// std is not in the table, so only core and alloc get edges.
	require.Len(t, consumer.deps, 2)
	assert.Equal(t, "core", consumer.deps[0].name)
	assert.Equal(t, "alloc", consumer.deps[1].name)
}

func TestProcMacroLinksProcMacroCrate(t *testing.T) {
	tc := testToolchain("//toolchain:host", "../rustc")
	macro := rustTarget("//m:m", "//m/src/lib.rs", "m", buildgraph.RustProcMacro, tc)
	macro.ComputedOutputs = []buildgraph.OutputFile{"obj/m/libm.so"}

	crates := resolveTargets(t, macro)
	consumer := findCrate(t, crates, "m")

	var names []string
	for _, d := range consumer.deps {
		names = append(names, d.name)
	}
	assert.Equal(t, []string{"core", "alloc", "std", "proc_macro"}, names)
}

func TestLoadSysrootTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sysroot_deps.toml")
	content := `crates = ["core", "alloc", "std"]

[deps]
alloc = ["core"]
std = ["alloc", "core"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := loadSysrootTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "alloc", "std"}, table.Crates)
	assert.Equal(t, []string{"alloc", "core"}, table.Deps["std"])
}

func TestLoadSysrootTableRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sysroot_deps.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := loadSysrootTable(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no crates"))
}
