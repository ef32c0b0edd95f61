package buildgraph

import "testing"

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"//src/lib/foo:foo", Label{Dir: "//src/lib/foo", Name: "foo"}},
		{"//src/lib/foo:foo(//build/toolchain:host)", Label{Dir: "//src/lib/foo", Name: "foo", Toolchain: "//build/toolchain:host"}},
		{"//src/lib/foo", Label{Dir: "//src/lib/foo", Name: "foo"}},
	}
	for _, tt := range tests {
		if got := ParseLabel(tt.in); got != tt.want {
			t.Errorf("ParseLabel(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestUserVisibleName(t *testing.T) {
	l := Label{Dir: "//src/lib/foo", Name: "foo", Toolchain: "//build/toolchain:host"}

	if got := l.UserVisibleName(false); got != "//src/lib/foo:foo" {
		t.Errorf("short form = %q", got)
	}
	if got := l.UserVisibleName(true); got != "//src/lib/foo:foo(//build/toolchain:host)" {
		t.Errorf("long form = %q", got)
	}

	noTC := Label{Dir: "//a", Name: "a"}
	if got := noTC.UserVisibleName(true); got != "//a:a" {
		t.Errorf("long form without toolchain = %q", got)
	}
}
