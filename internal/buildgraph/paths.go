package buildgraph

import (
	"path"
	"path/filepath"
	"strings"
)

// SourceFile is a source-absolute file path ("//src/lib/foo/src/lib.rs")
// or, for files synthesized outside the source tree, an absolute
// filesystem path.
type SourceFile string

// Dir returns the directory holding the file, with a trailing slash,
// in the same namespace as the file itself.
func (f SourceFile) Dir() SourceDir {
	s := string(f)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return SourceDir(s[:i+1])
	}
	return SourceDir("")
}

// SourceDir is a source-absolute directory path with a trailing slash.
type SourceDir string

// OutputFile is a path relative to the build directory.
type OutputFile string

// AsSourceDir reinterprets the output file as a directory under the
// build directory.
func (o OutputFile) AsSourceDir(s *BuildSettings) SourceDir {
	return SourceDir(string(s.BuildDir) + string(o))
}

// AsSourceFile reinterprets the output file as a file under the build
// directory.
func (o OutputFile) AsSourceFile(s *BuildSettings) SourceFile {
	return SourceFile(string(s.BuildDir) + string(o))
}

// BuildSettings holds the global paths of one build: the absolute
// source root and the source-absolute build directory.
type BuildSettings struct {
	// RootPath is the absolute filesystem path of the source root.
	RootPath string
	// BuildDir is the source-absolute build directory ("//out/debug/").
	BuildDir SourceDir
}

// FullPath resolves a source file to an absolute filesystem path.
// Already-absolute paths pass through unchanged.
func (s *BuildSettings) FullPath(f SourceFile) string {
	return s.resolve(string(f))
}

// FullPathDir resolves a source directory to an absolute filesystem
// path without the trailing slash.
func (s *BuildSettings) FullPathDir(d SourceDir) string {
	return strings.TrimSuffix(s.resolve(string(d)), string(filepath.Separator))
}

func (s *BuildSettings) resolve(p string) string {
	if rel, ok := strings.CutPrefix(p, "//"); ok {
		return filepath.Join(s.RootPath, filepath.FromSlash(rel))
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.RootPath, filepath.FromSlash(p))
}

// ResolveRelativeFile resolves a file name given relative to the build
// directory into a source-absolute file. An empty name is an error.
func (s *BuildSettings) ResolveRelativeFile(name string) (SourceFile, error) {
	if name == "" {
		return "", &PathError{Name: name, Reason: "empty file name"}
	}
	if strings.HasPrefix(name, "//") || filepath.IsAbs(name) {
		return SourceFile(name), nil
	}
	return SourceFile(string(s.BuildDir) + path.Clean(name)), nil
}

// PathError reports a path that could not be resolved.
type PathError struct {
	Name   string
	Reason string
}

func (e *PathError) Error() string {
	return "cannot resolve path \"" + e.Name + "\": " + e.Reason
}
