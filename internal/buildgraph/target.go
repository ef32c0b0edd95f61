package buildgraph

// OutputType classifies what a target produces.
type OutputType int

const (
	// Group targets produce nothing themselves; their dependencies are
	// logically inherited by whatever depends on them.
	Group OutputType = iota
	Executable
	SharedLibrary
	StaticLibrary
	RustLibrary
	RustProcMacro
	Action
	Copy
)

// IsBinary reports whether the target is a directly-compiled artifact
// rather than a grouping or file-shuffling node.
func (t OutputType) IsBinary() bool {
	switch t {
	case Executable, SharedLibrary, StaticLibrary, RustLibrary, RustProcMacro:
		return true
	}
	return false
}

func (t OutputType) String() string {
	switch t {
	case Group:
		return "group"
	case Executable:
		return "executable"
	case SharedLibrary:
		return "shared_library"
	case StaticLibrary:
		return "static_library"
	case RustLibrary:
		return "rust_library"
	case RustProcMacro:
		return "rust_proc_macro"
	case Action:
		return "action"
	case Copy:
		return "copy"
	}
	return "unknown"
}

// ConfigValues holds the per-configuration values that apply to a
// target: one instance per config attached to it, in config order.
type ConfigValues struct {
	// RustFlags are raw rustc argument tokens, in invocation order.
	RustFlags []string
	// RustEnv holds NAME=VALUE environment entries visible to the
	// compiler and to proc macros it expands.
	RustEnv []string
}

// Target is one resolved node of the build graph.
type Target struct {
	Label    Label
	Type     OutputType
	Testonly bool

	// RustSourceUsed is set when the target compiles at least one Rust
	// source file.
	RustSourceUsed bool
	// RustCrateRoot is the crate's primary source file; meaningful only
	// when RustSourceUsed is set.
	RustCrateRoot SourceFile
	// RustCrateName is the extern crate name.
	RustCrateName string

	// Configs holds the per-configuration values attached to the
	// target, in the order configs apply.
	Configs []ConfigValues

	// LinkedDeps are the dependency edges that participate in linking.
	LinkedDeps []*Target

	// ComputedOutputs are the files the target produces, relative to
	// the build directory.
	ComputedOutputs []OutputFile

	// GenDir is the target's generated-file directory relative to the
	// build directory, empty when the target generates nothing.
	GenDir OutputFile

	Toolchain *Toolchain
}

// IsBinary reports whether the target is a directly-compiled artifact.
func (t *Target) IsBinary() bool {
	return t.Type.IsBinary()
}
