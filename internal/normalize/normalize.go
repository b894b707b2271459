// Package normalize turns compiler failures and warnings into diagnostics.
//
// Every function here is pure: it returns records and never pushes them
// anywhere. The pipeline owns the sink so it can keep ordering in one place.
package normalize

import (
	"fmt"
	"path/filepath"
	"strings"

	"unitc/internal/diag"
	"unitc/internal/failure"
)

// LocationDelimiter separates a syntax message from its location suffix.
const LocationDelimiter = " @ line "

// UnknownMessage is reported for failures of unrecognised shape.
const UnknownMessage = "An unknown error occurred."

// Failure converts f into zero or more diagnostics, depth first.
func Failure(f *failure.Failure) []diag.Diagnostic {
	return appendFailure(nil, f)
}

func appendFailure(out []diag.Diagnostic, f *failure.Failure) []diag.Diagnostic {
	if f == nil {
		return append(out, diag.NewError(UnknownMessage))
	}
	switch f.Kind {
	case failure.KindAggregate:
		for _, cause := range f.Causes {
			out = appendFailure(out, cause)
		}
		return out
	case failure.KindSyntax:
		return append(out, syntax(f))
	case failure.KindWrapped:
		return appendFailure(out, f.Cause)
	case failure.KindPlain:
		return append(out, diag.NewError(f.Text))
	case failure.KindRuntime:
		return append(out, runtime(f))
	case failure.KindIO:
		return append(out, diag.NewError(ioText(f)))
	default:
		return append(out, diag.NewError(UnknownMessage))
	}
}

func syntax(f *failure.Failure) diag.Diagnostic {
	msg := f.Text
	if i := strings.LastIndex(msg, LocationDelimiter); i >= 0 {
		msg = msg[:i]
	}
	return diag.New(diag.SevError, msg, FileURL(f.SourcePath), f.Line, f.Column)
}

func runtime(f *failure.Failure) diag.Diagnostic {
	line, column := diag.NoPosition, diag.NoPosition
	if f.Node != nil {
		line, column = f.Node.Line, f.Node.Column
	}
	return diag.New(diag.SevError, f.Text, f.Module, line, column)
}

func ioText(f *failure.Failure) string {
	if f.Err == nil {
		return "i/o failure"
	}
	return f.Err.Error()
}

// FileURL builds the location URL for a source path. An empty path has no location.
func FileURL(path string) string {
	if path == "" {
		return ""
	}
	return diag.FileScheme + filepath.ToSlash(path)
}

// Error normalizes an error returned by a pass.
//
// A *failure.Failure anywhere in the chain is dispatched by shape. Any other
// error is reported by its text, the same way an IO failure is.
func Error(err error) []diag.Diagnostic {
	if err == nil {
		return nil
	}
	if f, ok := failure.From(err); ok {
		return Failure(f)
	}
	return Failure(failure.IO(err))
}

// Panic normalizes a value recovered from a pass that panicked.
func Panic(v any) []diag.Diagnostic {
	if err, ok := v.(error); ok {
		return Error(err)
	}
	return Failure(failure.Unknown())
}

// Warning normalizes one compiler warning. Warnings never carry a location:
// the front-end does not report one.
func Warning(msg string) diag.Diagnostic {
	return diag.NewWarning(msg)
}

// Warnings normalizes msgs in order.
func Warnings(msgs []string) []diag.Diagnostic {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, len(msgs))
	for i, m := range msgs {
		out[i] = Warning(m)
	}
	return out
}

// Unattributed reports compiled classes no source file claimed.
func Unattributed(pass string, classes []string) (diag.Diagnostic, bool) {
	if len(classes) == 0 {
		return diag.Diagnostic{}, false
	}
	noun := "classes"
	if len(classes) == 1 {
		noun = "class"
	}
	msg := fmt.Sprintf("%s pass: %d compiled %s not attributed to any source file: %s",
		pass, len(classes), noun, strings.Join(classes, ", "))
	return diag.NewInfo(msg), true
}
