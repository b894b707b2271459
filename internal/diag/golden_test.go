package diag

import "testing"

func TestFormatShortDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		New(SevError, "unexpected token\nsecond", "file:///workspace/src/Foo.groovy", 3, 7),
		NewWarning("unused import"),
		New(SevError, "cannot resolve", "Script1.groovy", NoPosition, NoPosition),
		New(SevError, "cannot find symbol", "file:///workspace/src/B.java", 12, NoPosition),
		NewInfo("2 classes unattributed"),
	}

	expected := "error src/Foo.groovy:3:7 unexpected token second\n" +
		"warning - unused import\n" +
		"error Script1.groovy cannot resolve\n" +
		"error src/B.java:12 cannot find symbol\n" +
		"info - 2 classes unattributed"

	if got := FormatShortDiagnostics(diags, "/workspace"); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsEmpty(t *testing.T) {
	if got := FormatShortDiagnostics(nil, ""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestDisplayPathOutsideBase(t *testing.T) {
	got := DisplayPath("file:///other/Bar.groovy", "/workspace")
	if got != "/other/Bar.groovy" {
		t.Fatalf("DisplayPath = %q", got)
	}
}

func TestSanitizeMessageComposes(t *testing.T) {
	// "e" followed by a combining acute accent.
	if got := SanitizeMessage(" cafe\u0301 "); got != "caf\u00e9" {
		t.Fatalf("SanitizeMessage = %q", got)
	}
}
