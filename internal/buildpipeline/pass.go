package buildpipeline

import (
	"iter"

	"unitc/internal/attrib"
)

// Source is the handle a pass returns for a staged file.
type Source struct {
	Path string
	ID   int
}

// Pass wraps one invocation of an external compiler front-end.
//
// Compile blocks until the front-end finishes. It returns nil on success or
// an error, normally a *failure.Failure of aggregate, IO or runtime shape.
// The remaining accessors report the outcome of the most recent Compile.
type Pass interface {
	AddSource(path string) Source
	Compile() error
	CompiledClasses() []string
	// SourceUnits yields each staged source with its top-level class names,
	// in the order the front-end processed them. It may be iterated again.
	SourceUnits() iter.Seq[attrib.SourceUnit]
	// Warnings returns the warnings accumulated by the last Compile, whether
	// it succeeded or not.
	Warnings() []string
	OutputDirectory() string
}

// Registration assigns a file to exactly one pass.
type Registration struct {
	Path   string
	IsTest bool
	Source Source
}
