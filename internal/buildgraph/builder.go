package buildgraph

// Builder holds the fully resolved build graph: every target in a
// stable order, plus the identity of the default toolchain.
type Builder struct {
	targets          []*Target
	defaultToolchain Label
}

// NewBuilder creates a builder over an already-resolved target list.
// The slice order is preserved and becomes the iteration order for
// every consumer, which keeps downstream output deterministic.
func NewBuilder(targets []*Target, defaultToolchain Label) *Builder {
	return &Builder{targets: targets, defaultToolchain: defaultToolchain}
}

// ResolvedTargets returns all targets in stable order.
func (b *Builder) ResolvedTargets() []*Target {
	return b.targets
}

// DefaultToolchain returns the label of the build's default toolchain.
func (b *Builder) DefaultToolchain() Label {
	return b.defaultToolchain
}
