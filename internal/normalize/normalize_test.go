package normalize

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"

	"unitc/internal/diag"
	"unitc/internal/failure"
)

func TestFailureShapes(t *testing.T) {
	tests := []struct {
		name string
		in   *failure.Failure
		want []diag.Diagnostic
	}{
		{
			name: "syntax truncates at delimiter",
			in:   failure.Syntax("Unexpected token @ line 5, column 3.", "/src/A.groovy", 5, 3),
			want: []diag.Diagnostic{diag.New(diag.SevError, "Unexpected token", "file:///src/A.groovy", 5, 3)},
		},
		{
			name: "syntax uses last delimiter",
			in:   failure.Syntax("expected ' @ line ' here @ line 2, column 1.", "/src/B.groovy", 2, 1),
			want: []diag.Diagnostic{diag.New(diag.SevError, "expected ' @ line ' here", "file:///src/B.groovy", 2, 1)},
		},
		{
			name: "syntax without delimiter keeps text",
			in:   failure.Syntax("unexpected end of file", "/src/C.groovy", 9, 1),
			want: []diag.Diagnostic{diag.New(diag.SevError, "unexpected end of file", "file:///src/C.groovy", 9, 1)},
		},
		{
			name: "plain",
			in:   failure.Plain("General error during conversion"),
			want: []diag.Diagnostic{diag.NewError("General error during conversion")},
		},
		{
			name: "runtime",
			in:   failure.Runtime("No such class: Foo", "Script1.groovy", &failure.Node{Line: 7, Column: 12}),
			want: []diag.Diagnostic{diag.New(diag.SevError, "No such class: Foo", "Script1.groovy", 7, 12)},
		},
		{
			name: "runtime without node",
			in:   failure.Runtime("No such class: Foo", "Script1.groovy", nil),
			want: []diag.Diagnostic{diag.New(diag.SevError, "No such class: Foo", "Script1.groovy", -1, -1)},
		},
		{
			name: "io",
			in:   failure.IO(&fs.PathError{Op: "open", Path: "/out", Err: fs.ErrPermission}),
			want: []diag.Diagnostic{diag.NewError("open /out: permission denied")},
		},
		{
			name: "unknown",
			in:   failure.Unknown(),
			want: []diag.Diagnostic{diag.NewError(UnknownMessage)},
		},
		{
			name: "wrapped unwraps one level",
			in:   failure.Wrap(failure.Plain("inner")),
			want: []diag.Diagnostic{diag.NewError("inner")},
		},
		{
			name: "wrapped nil cause",
			in:   failure.Wrap(nil),
			want: []diag.Diagnostic{diag.NewError(UnknownMessage)},
		},
		{
			name: "aggregate flattens recursively in order",
			in: failure.Aggregate(
				failure.SyntaxAt("first", "/a.groovy", 1, 1),
				failure.Aggregate(failure.Plain("second"), failure.Wrap(failure.Plain("third"))),
				failure.Unknown(),
			),
			want: []diag.Diagnostic{
				diag.New(diag.SevError, "first", "file:///a.groovy", 1, 1),
				diag.NewError("second"),
				diag.NewError("third"),
				diag.NewError(UnknownMessage),
			},
		},
		{
			name: "empty aggregate",
			in:   failure.Aggregate(),
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Failure(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Failure mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrorDispatch(t *testing.T) {
	wrapped := fmt.Errorf("main pass: %w", failure.Aggregate(failure.Plain("a"), failure.Plain("b")))
	if got := Error(wrapped); len(got) != 2 || got[0].Message != "a" || got[1].Message != "b" {
		t.Fatalf("Error(wrapped aggregate) = %+v", got)
	}

	got := Error(errors.New("exec: \"groovyc\": executable file not found in $PATH"))
	want := []diag.Diagnostic{diag.NewError("exec: \"groovyc\": executable file not found in $PATH")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Error(foreign) mismatch (-want +got):\n%s", diff)
	}

	if Error(nil) != nil {
		t.Fatal("Error(nil) must be empty")
	}
}

func TestPanic(t *testing.T) {
	if got := Panic(failure.Plain("boom")); len(got) != 1 || got[0].Message != "boom" {
		t.Fatalf("Panic(error) = %+v", got)
	}
	if got := Panic(42); len(got) != 1 || got[0].Message != UnknownMessage {
		t.Fatalf("Panic(42) = %+v", got)
	}
}

func TestWarningsHaveNoLocation(t *testing.T) {
	got := Warnings([]string{"unused variable", "deprecated API"})
	want := []diag.Diagnostic{
		{Severity: diag.SevWarning, Message: "unused variable", Line: -1, Column: -1},
		{Severity: diag.SevWarning, Message: "deprecated API", Line: -1, Column: -1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestUnattributed(t *testing.T) {
	if _, ok := Unattributed("test", nil); ok {
		t.Fatal("no classes must produce no diagnostic")
	}
	d, ok := Unattributed("production", []string{"a.Ghost", "a.Ghost$1"})
	if !ok || d.Severity != diag.SevInfo {
		t.Fatalf("Unattributed = %+v, %v", d, ok)
	}
	want := "production pass: 2 compiled classes not attributed to any source file: a.Ghost, a.Ghost$1"
	if d.Message != want {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestFileURL(t *testing.T) {
	if FileURL("") != "" {
		t.Fatal("empty path must not produce a URL")
	}
	if got := FileURL("/home/u/src/A.groovy"); got != "file:///home/u/src/A.groovy" {
		t.Fatalf("FileURL = %q", got)
	}
}
