package buildgraph

// Names of the Rust tools a toolchain can define. The macro tool
// compiles proc-macro crates into dynamically loaded compiler plugins.
const (
	RustToolBin       = "rust_bin"
	RustToolCDylib    = "rust_cdylib"
	RustToolDylib     = "rust_dylib"
	RustToolMacro     = "rust_macro"
	RustToolRlib      = "rust_rlib"
	RustToolStaticlib = "rust_staticlib"
)

// Tool describes one compilation tool of a toolchain.
type Tool struct {
	// Name is one of the RustTool* constants.
	Name string
	// Sysroot is the toolchain-relative standard-library install root,
	// empty when the toolchain needs no sysroot.
	Sysroot string
}

// Toolchain is the set of tools a target is built with.
type Toolchain struct {
	Label Label
	// Tools maps tool name to definition.
	Tools map[string]*Tool
}

// RustToolForTarget returns the Rust tool used for the target's final
// output, or nil when the toolchain defines none.
func (tc *Toolchain) RustToolForTarget(t *Target) *Tool {
	name := rustToolNameForType(t.Type)
	if name == "" {
		return nil
	}
	return tc.Tools[name]
}

func rustToolNameForType(t OutputType) string {
	switch t {
	case Executable:
		return RustToolBin
	case SharedLibrary:
		return RustToolCDylib
	case StaticLibrary:
		return RustToolStaticlib
	case RustLibrary:
		return RustToolRlib
	case RustProcMacro:
		return RustToolMacro
	}
	return ""
}
