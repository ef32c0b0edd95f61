package rustproject

import (
	"reflect"
	"testing"

	"github.com/shezw/gn/internal/buildgraph"
)

func TestScanArgs(t *testing.T) {
	args := []string{
		"--crate-type", "rlib",
		"--cfg=feature=\"json\"",
		"--edition", "2018",
		"--edition=2021",
		"--target=x86_64-unknown-linux-gnu",
		"--cfg=unix",
		"--target", "aarch64-apple-darwin",
	}
	v := scanArgs(args, exportFlags)

	if got := v.AllPrefix("cfg"); !reflect.DeepEqual(got, []string{"feature=\"json\"", "unix"}) {
		t.Errorf("cfg values = %v", got)
	}

	if got, ok := v.PrefixFirst("edition"); !ok || got != "2021" {
		t.Errorf("edition prefix = %q, %v", got, ok)
	}
	if got, ok := v.SeparateFirst("edition"); !ok || got != "2018" {
		t.Errorf("edition pair = %q, %v", got, ok)
	}

	// --target appears in both forms; token order decides.
	if got, ok := v.FirstAny("target"); !ok || got != "x86_64-unknown-linux-gnu" {
		t.Errorf("target = %q, %v", got, ok)
	}
}

func TestScanArgsDanglingSeparateFlag(t *testing.T) {
	// A pair-form flag at the end of the list has no value to take.
	v := scanArgs([]string{"--edition"}, exportFlags)
	if _, ok := v.SeparateFirst("edition"); ok {
		t.Error("dangling --edition must yield no value")
	}
}

func TestScanArgsEmpty(t *testing.T) {
	v := scanArgs(nil, exportFlags)
	if _, ok := v.FirstAny("target"); ok {
		t.Error("empty args must yield nothing")
	}
	if got := v.AllPrefix("cfg"); len(got) != 0 {
		t.Errorf("empty args must yield no cfgs, got %v", got)
	}
}

func TestExtractCompilerArgsFlattensConfigsInOrder(t *testing.T) {
	target := &buildgraph.Target{
		Configs: []buildgraph.ConfigValues{
			{RustFlags: []string{"--edition=2018", "-Copt-level=2"}},
			{RustFlags: []string{"--cfg=unix"}},
			{RustFlags: []string{"-Copt-level=2"}},
		},
	}
	got := extractCompilerArgs(target)
	want := []string{"--edition=2018", "-Copt-level=2", "--cfg=unix", "-Copt-level=2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}
