// Package failure models the failure shapes a compiler front-end reports.
//
// A Failure is a tagged variant: Kind selects which fields are meaningful.
// Consumers switch on Kind instead of inspecting dynamic types, and the whole
// tree can be walked without reflection. Failure implements error so a pass
// can return it from Compile like any other error.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the shape of a Failure.
type Kind uint8

const (
	// KindUnknown is the zero value; it normalizes to a generic message.
	KindUnknown Kind = iota
	// KindAggregate wraps several independent causes.
	KindAggregate
	// KindSyntax is a location-bearing syntax failure.
	KindSyntax
	// KindWrapped adds one level of indirection around a cause.
	KindWrapped
	// KindPlain is unstructured text.
	KindPlain
	// KindRuntime carries a syntax-tree node location and a module description.
	KindRuntime
	// KindIO is a filesystem or output-enumeration failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindAggregate:
		return "aggregate"
	case KindSyntax:
		return "syntax"
	case KindWrapped:
		return "wrapped"
	case KindPlain:
		return "plain"
	case KindRuntime:
		return "runtime"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Node is the source position of a syntax-tree node.
type Node struct {
	Line   int
	Column int
}

// Failure is one compiler failure.
type Failure struct {
	Kind Kind

	// Text is the raw message. For KindSyntax it still contains the
	// " @ line N, column M." suffix; for KindRuntime it is the message
	// without location text.
	Text string

	// KindSyntax.
	SourcePath string
	Line       int
	Column     int

	// KindAggregate.
	Causes []*Failure

	// KindWrapped.
	Cause *Failure

	// KindRuntime.
	Module string
	Node   *Node

	// KindIO.
	Err error
}

// Aggregate groups causes reported together by one compile call.
func Aggregate(causes ...*Failure) *Failure {
	return &Failure{Kind: KindAggregate, Causes: causes}
}

// Syntax builds a syntax failure from the compiler's raw text.
func Syntax(text, sourcePath string, line, column int) *Failure {
	return &Failure{Kind: KindSyntax, Text: text, SourcePath: sourcePath, Line: line, Column: column}
}

// SyntaxAt builds a syntax failure whose text carries the usual location suffix.
func SyntaxAt(msg, sourcePath string, line, column int) *Failure {
	return Syntax(fmt.Sprintf("%s @ line %d, column %d.", msg, line, column), sourcePath, line, column)
}

// Wrap adds one level of indirection around cause.
func Wrap(cause *Failure) *Failure {
	return &Failure{Kind: KindWrapped, Cause: cause}
}

// Plain builds an unstructured failure.
func Plain(text string) *Failure {
	return &Failure{Kind: KindPlain, Text: text}
}

// Runtime builds a failure attached to a syntax-tree node of module.
func Runtime(msg, module string, node *Node) *Failure {
	return &Failure{Kind: KindRuntime, Text: msg, Module: module, Node: node}
}

// IO wraps a filesystem error.
func IO(err error) *Failure {
	return &Failure{Kind: KindIO, Err: err}
}

// Unknown builds a failure of unrecognised shape.
func Unknown() *Failure {
	return &Failure{Kind: KindUnknown}
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil failure>"
	}
	switch f.Kind {
	case KindAggregate:
		parts := make([]string, 0, len(f.Causes))
		for _, c := range f.Causes {
			parts = append(parts, c.Error())
		}
		return fmt.Sprintf("%d compilation error(s):\n%s", len(f.Causes), strings.Join(parts, "\n"))
	case KindSyntax:
		if f.SourcePath == "" {
			return f.Text
		}
		return f.SourcePath + ": " + f.Text
	case KindWrapped:
		return f.Cause.Error()
	case KindPlain:
		return f.Text
	case KindRuntime:
		if f.Node == nil {
			return f.Text
		}
		return fmt.Sprintf("%s\n\nat line: %d, column: %d", f.Text, f.Node.Line, f.Node.Column)
	case KindIO:
		if f.Err == nil {
			return "i/o failure"
		}
		return f.Err.Error()
	default:
		return "unknown failure"
	}
}

// Unwrap exposes the nested causes to errors.Is and errors.As.
func (f *Failure) Unwrap() []error {
	if f == nil {
		return nil
	}
	switch f.Kind {
	case KindAggregate:
		errs := make([]error, 0, len(f.Causes))
		for _, c := range f.Causes {
			if c != nil {
				errs = append(errs, c)
			}
		}
		return errs
	case KindWrapped:
		if f.Cause != nil {
			return []error{f.Cause}
		}
	case KindIO:
		if f.Err != nil {
			return []error{f.Err}
		}
	}
	return nil
}

// From returns the first *Failure in err's chain.
func From(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) && f != nil {
		return f, true
	}
	return nil, false
}

// Count returns the number of leaf failures under f.
func Count(f *Failure) int {
	if f == nil {
		return 0
	}
	switch f.Kind {
	case KindAggregate:
		n := 0
		for _, c := range f.Causes {
			n += Count(c)
		}
		return n
	case KindWrapped:
		if f.Cause == nil {
			return 1
		}
		return Count(f.Cause)
	default:
		return 1
	}
}
