package buildgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Root:             "/work/src",
		BuildDir:         "//out/debug/",
		DefaultToolchain: "//build/toolchain:host",
		Toolchains: []SnapshotToolchain{
			{
				Label: "//build/toolchain:host",
				Tools: []SnapshotTool{
					{Name: RustToolRlib, Sysroot: "../rustc"},
					{Name: RustToolBin, Sysroot: "../rustc"},
				},
			},
		},
		Targets: []SnapshotTarget{
			{
				Label:          "//foo:foo",
				Type:           "rust_library",
				Toolchain:      "//build/toolchain:host",
				RustSourceUsed: true,
				RustCrateRoot:  "//foo/src/lib.rs",
				RustCrateName:  "foo",
				Configs: []SnapshotConfig{
					{RustFlags: []string{"--edition=2021"}, RustEnv: []string{"OUT_DIR=gen/foo"}},
				},
				Outputs: []string{"obj/foo/libfoo.rlib"},
				GenDir:  "gen/foo/",
			},
			{
				Label:          "//bar:bar",
				Type:           "executable",
				Toolchain:      "//build/toolchain:host",
				RustSourceUsed: true,
				RustCrateRoot:  "//bar/src/main.rs",
				RustCrateName:  "bar",
				Deps:           []string{"//foo:foo(//build/toolchain:host)"},
			},
		},
	}
}

func TestSnapshotMaterialize(t *testing.T) {
	builder, settings, err := testSnapshot().Materialize()
	require.NoError(t, err)

	assert.Equal(t, "/work/src", settings.RootPath)
	assert.Equal(t, SourceDir("//out/debug/"), settings.BuildDir)
	assert.Equal(t, "//build/toolchain:host", builder.DefaultToolchain().String())

	targets := builder.ResolvedTargets()
	require.Len(t, targets, 2)

	foo, bar := targets[0], targets[1]
	assert.Equal(t, RustLibrary, foo.Type)
	assert.True(t, foo.IsBinary())
	assert.Equal(t, SourceFile("//foo/src/lib.rs"), foo.RustCrateRoot)
	assert.Equal(t, []string{"--edition=2021"}, foo.Configs[0].RustFlags)
	assert.Equal(t, OutputFile("gen/foo/"), foo.GenDir)

	tool := foo.Toolchain.RustToolForTarget(foo)
	require.NotNil(t, tool)
	assert.Equal(t, "../rustc", tool.Sysroot)

	require.Len(t, bar.LinkedDeps, 1)
	assert.Same(t, foo, bar.LinkedDeps[0])
}

func TestSnapshotMaterializeErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr string
	}{
		{
			name:    "unknown dep",
			mutate:  func(s *Snapshot) { s.Targets[1].Deps = []string{"//gone:gone"} },
			wantErr: "unknown target",
		},
		{
			name:    "unknown toolchain",
			mutate:  func(s *Snapshot) { s.Targets[0].Toolchain = "//build/toolchain:missing" },
			wantErr: "unknown toolchain",
		},
		{
			name:    "unknown type",
			mutate:  func(s *Snapshot) { s.Targets[0].Type = "mystery" },
			wantErr: "unknown type",
		},
		{
			name: "duplicate target",
			mutate: func(s *Snapshot) {
				s.Targets = append(s.Targets, s.Targets[0])
			},
			wantErr: "duplicate target",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := testSnapshot()
			tt.mutate(snap)
			_, _, err := snap.Materialize()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	content := `{
  "root": "/work/src",
  "build_dir": "//out/",
  "default_toolchain": "//tc:host",
  "toolchains": [{"label": "//tc:host", "tools": [{"name": "rust_rlib"}]}],
  "targets": [
    {
      "label": "//a:a",
      "type": "rust_library",
      "toolchain": "//tc:host",
      "rust_source_used": true,
      "rust_crate_root": "//a/src/lib.rs",
      "rust_crate_name": "a"
    }
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	builder, settings, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "/work/src", settings.RootPath)
	require.Len(t, builder.ResolvedTargets(), 1)

	_, _, err = LoadSnapshot(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, _, err = LoadSnapshot(path)
	require.Error(t, err)
}
