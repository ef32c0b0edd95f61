package buildgraph

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is the serialized form of a resolved build graph, produced
// by the build-description frontend and consumed by exporters. It is
// the narrow interface between graph resolution and metadata export:
// targets appear fully resolved, with dependency edges by label.
type Snapshot struct {
	Root             string              `json:"root"`
	BuildDir         string              `json:"build_dir"`
	DefaultToolchain string              `json:"default_toolchain"`
	Toolchains       []SnapshotToolchain `json:"toolchains"`
	Targets          []SnapshotTarget    `json:"targets"`
}

// SnapshotToolchain describes one toolchain and its tools.
type SnapshotToolchain struct {
	Label string         `json:"label"`
	Tools []SnapshotTool `json:"tools"`
}

// SnapshotTool describes one tool of a toolchain.
type SnapshotTool struct {
	Name    string `json:"name"`
	Sysroot string `json:"sysroot,omitempty"`
}

// SnapshotTarget describes one resolved target. Deps reference other
// targets by their long-form label (toolchain included).
type SnapshotTarget struct {
	Label          string           `json:"label"`
	Type           string           `json:"type"`
	Toolchain      string           `json:"toolchain"`
	Testonly       bool             `json:"testonly,omitempty"`
	RustSourceUsed bool             `json:"rust_source_used,omitempty"`
	RustCrateRoot  string           `json:"rust_crate_root,omitempty"`
	RustCrateName  string           `json:"rust_crate_name,omitempty"`
	Configs        []SnapshotConfig `json:"configs,omitempty"`
	Deps           []string         `json:"deps,omitempty"`
	Outputs        []string         `json:"outputs,omitempty"`
	GenDir         string           `json:"gen_dir,omitempty"`
}

// SnapshotConfig is one per-configuration value block.
type SnapshotConfig struct {
	RustFlags []string `json:"rustflags,omitempty"`
	RustEnv   []string `json:"rustenv,omitempty"`
}

var outputTypeNames = map[string]OutputType{
	"group":           Group,
	"executable":      Executable,
	"shared_library":  SharedLibrary,
	"static_library":  StaticLibrary,
	"rust_library":    RustLibrary,
	"rust_proc_macro": RustProcMacro,
	"action":          Action,
	"copy":            Copy,
}

// LoadSnapshot reads a graph snapshot file and materializes it as a
// Builder plus the build settings it was resolved against.
func LoadSnapshot(path string) (*Builder, *BuildSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read graph snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("failed to decode graph snapshot %s: %w", path, err)
	}
	return snap.Materialize()
}

// Materialize converts the snapshot into live graph structures,
// resolving toolchain and dependency references. Order of the target
// list is preserved.
func (s *Snapshot) Materialize() (*Builder, *BuildSettings, error) {
	settings := &BuildSettings{
		RootPath: s.Root,
		BuildDir: SourceDir(s.BuildDir),
	}

	toolchains := make(map[string]*Toolchain, len(s.Toolchains))
	for _, st := range s.Toolchains {
		tc := &Toolchain{
			Label: ParseLabel(st.Label),
			Tools: make(map[string]*Tool, len(st.Tools)),
		}
		for _, t := range st.Tools {
			tc.Tools[t.Name] = &Tool{Name: t.Name, Sysroot: t.Sysroot}
		}
		toolchains[st.Label] = tc
	}

	targets := make([]*Target, 0, len(s.Targets))
	byLabel := make(map[string]*Target, len(s.Targets))
	for _, st := range s.Targets {
		typ, ok := outputTypeNames[st.Type]
		if !ok {
			return nil, nil, fmt.Errorf("target %s has unknown type %q", st.Label, st.Type)
		}
		tc, ok := toolchains[st.Toolchain]
		if !ok {
			return nil, nil, fmt.Errorf("target %s references unknown toolchain %q", st.Label, st.Toolchain)
		}

		target := &Target{
			Label:          ParseLabel(st.Label),
			Type:           typ,
			Testonly:       st.Testonly,
			RustSourceUsed: st.RustSourceUsed,
			RustCrateRoot:  SourceFile(st.RustCrateRoot),
			RustCrateName:  st.RustCrateName,
			GenDir:         OutputFile(st.GenDir),
			Toolchain:      tc,
		}
		target.Label.Toolchain = st.Toolchain
		for _, c := range st.Configs {
			target.Configs = append(target.Configs, ConfigValues{
				RustFlags: c.RustFlags,
				RustEnv:   c.RustEnv,
			})
		}
		for _, out := range st.Outputs {
			target.ComputedOutputs = append(target.ComputedOutputs, OutputFile(out))
		}

		key := target.Label.UserVisibleName(true)
		if _, dup := byLabel[key]; dup {
			return nil, nil, fmt.Errorf("duplicate target %s in snapshot", key)
		}
		byLabel[key] = target
		targets = append(targets, target)
	}

	// Wire dependency edges once every target exists.
	for i, st := range s.Targets {
		for _, dep := range st.Deps {
			to, ok := byLabel[dep]
			if !ok {
				return nil, nil, fmt.Errorf("target %s depends on unknown target %q", st.Label, dep)
			}
			targets[i].LinkedDeps = append(targets[i].LinkedDeps, to)
		}
	}

	return NewBuilder(targets, ParseLabel(s.DefaultToolchain)), settings, nil
}
