package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestSyntaxAtText(t *testing.T) {
	f := SyntaxAt("Unexpected token", "/src/A.groovy", 5, 3)
	if f.Text != "Unexpected token @ line 5, column 3." {
		t.Fatalf("Text = %q", f.Text)
	}
	if f.Error() != "/src/A.groovy: Unexpected token @ line 5, column 3." {
		t.Fatalf("Error = %q", f.Error())
	}
}

func TestUnwrapReachesIOCause(t *testing.T) {
	err := Aggregate(Plain("a"), Wrap(IO(fs.ErrPermission)))
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatal("expected errors.Is to find fs.ErrPermission through the aggregate")
	}
}

func TestFromWrappedError(t *testing.T) {
	inner := Plain("boom")
	err := fmt.Errorf("pass main: %w", inner)
	got, ok := From(err)
	if !ok || got != inner {
		t.Fatalf("From = %v, %v", got, ok)
	}
	if _, ok := From(errors.New("plain go error")); ok {
		t.Fatal("expected no failure in a foreign error")
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		f    *Failure
		want int
	}{
		{"nil", nil, 0},
		{"leaf", Plain("x"), 1},
		{"aggregate", Aggregate(Plain("x"), Aggregate(Plain("y"), Plain("z"))), 3},
		{"wrapped", Wrap(Aggregate(Plain("x"), Plain("y"))), 2},
		{"empty wrap", Wrap(nil), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.f); got != tt.want {
				t.Fatalf("Count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRuntimeErrorText(t *testing.T) {
	f := Runtime("No such property: x", "Script1", &Node{Line: 4, Column: 9})
	want := "No such property: x\n\nat line: 4, column: 9"
	if f.Error() != want {
		t.Fatalf("Error = %q", f.Error())
	}
}
