package rustproject

import (
	"strings"

	"github.com/shezw/gn/internal/buildgraph"
)

// flagSpec declares one compiler flag the exporter extracts. A flag
// may appear in prefix form ("--edition=2021") or as a separate pair
// ("--edition 2021"); a spec enables either or both.
type flagSpec struct {
	// name keys the extracted values.
	name string
	// prefix matches tokens carrying the value inline, e.g. "--cfg=".
	prefix string
	// separate matches a token whose value is the following token.
	separate string
}

// exportFlags is the full grammar the exporter cares about. Each arg
// list is scanned once against these rules.
var exportFlags = []flagSpec{
	{name: "target", prefix: "--target=", separate: "--target"},
	{name: "edition", prefix: "--edition=", separate: "--edition"},
	{name: "cfg", prefix: "--cfg="},
}

// flagValues holds the values extracted by one scan, split by the form
// they were written in. Prefix and pair forms are kept apart because
// some callers give one form precedence over the other.
type flagValues struct {
	prefix   map[string][]string
	separate map[string][]string
	// firstAny records the first value seen for each flag in token
	// order, regardless of form.
	firstAny map[string]string
}

// scanArgs evaluates the grammar against an argument list in a single
// pass, preserving token order within each bucket.
func scanArgs(args []string, specs []flagSpec) *flagValues {
	v := &flagValues{
		prefix:   make(map[string][]string),
		separate: make(map[string][]string),
		firstAny: make(map[string]string),
	}
	for i, arg := range args {
		for _, spec := range specs {
			if spec.prefix != "" && strings.HasPrefix(arg, spec.prefix) {
				val := strings.TrimPrefix(arg, spec.prefix)
				v.prefix[spec.name] = append(v.prefix[spec.name], val)
				if _, seen := v.firstAny[spec.name]; !seen {
					v.firstAny[spec.name] = val
				}
				break
			}
			if spec.separate != "" && arg == spec.separate && i+1 < len(args) {
				val := args[i+1]
				v.separate[spec.name] = append(v.separate[spec.name], val)
				if _, seen := v.firstAny[spec.name]; !seen {
					v.firstAny[spec.name] = val
				}
				break
			}
		}
	}
	return v
}

// FirstAny returns the first value for the flag in token order,
// whichever form it used.
func (v *flagValues) FirstAny(name string) (string, bool) {
	s, ok := v.firstAny[name]
	return s, ok
}

// PrefixFirst returns the first prefix-form value for the flag.
func (v *flagValues) PrefixFirst(name string) (string, bool) {
	if vals := v.prefix[name]; len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

// SeparateFirst returns the first pair-form value for the flag.
func (v *flagValues) SeparateFirst(name string) (string, bool) {
	if vals := v.separate[name]; len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

// AllPrefix returns every prefix-form value for the flag in order.
func (v *flagValues) AllPrefix(name string) []string {
	return v.prefix[name]
}

// extractCompilerArgs flattens a target's per-configuration rustflags
// into one token list, in configuration order. Duplicates are kept:
// the list mirrors the actual compiler invocation.
func extractCompilerArgs(target *buildgraph.Target) []string {
	var args []string
	for _, cfg := range target.Configs {
		args = append(args, cfg.RustFlags...)
	}
	return args
}
