package buildgraph

import "strings"

// Label identifies a target or toolchain in the build graph.
// Dir is a source-absolute directory ("//src/lib/foo"), Name is the
// target name within that directory. Toolchain is the label string of
// the toolchain the target is built in, empty for toolchain labels
// themselves.
type Label struct {
	Dir       string
	Name      string
	Toolchain string
}

// ParseLabel parses a "//dir:name(//toolchain:name)" label string.
func ParseLabel(s string) Label {
	var l Label
	if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
		l.Toolchain = s[i+1 : len(s)-1]
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		l.Dir = s[:i]
		l.Name = s[i+1:]
	} else {
		l.Dir = s
		l.Name = lastPathComponent(s)
	}
	return l
}

func lastPathComponent(dir string) string {
	if i := strings.LastIndexByte(dir, '/'); i >= 0 {
		return dir[i+1:]
	}
	return dir
}

// UserVisibleName renders the label the way it appears in build files.
// When includeToolchain is set the toolchain label is appended in
// parentheses, matching the long form used in diagnostics.
func (l Label) UserVisibleName(includeToolchain bool) string {
	s := l.Dir + ":" + l.Name
	if includeToolchain && l.Toolchain != "" {
		s += "(" + l.Toolchain + ")"
	}
	return s
}

func (l Label) String() string {
	return l.UserVisibleName(false)
}
